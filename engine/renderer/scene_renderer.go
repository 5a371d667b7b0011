package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// bind group indices of the lit shader
const (
	groupFrame    = 0
	groupObject   = 1
	groupMaterial = 2
)

// bindings inside the material group
const (
	bindingMaterialParams  = 0
	bindingMaterialTexture = 1
	bindingMaterialSampler = 2
)

type gpuMesh struct {
	mesh     bind_group_provider.BindGroupProvider
	material material.Material
}

type gpuModel struct {
	meshes []gpuMesh
	users  int
}

type sceneRenderer struct {
	mu       *sync.Mutex
	renderer Renderer
	logger   *slog.Logger

	// layouts of the lit pipeline, set once the pipelines are registered
	layouts map[int]wgpu.BindGroupLayoutDescriptor
	frame   bind_group_provider.BindGroupProvider

	objects     map[uint64]bind_group_provider.BindGroupProvider
	objectModel map[uint64]uint64
	models      map[uint64]*gpuModel
}

// SceneRenderer draws a Scene through a Renderer with the lit pipelines. GPU resources are
// created the first time a GameObject or Model is drawn and kept until released.
type SceneRenderer interface {
	// Render draws one frame: the scene's enabled children as seen from cam, lit by the
	// scene's first light and cleared to the scene background.
	//
	// Parameters:
	//   - sc: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: an error if upload fails or no surface texture could be acquired
	Render(sc scene.Scene, cam camera.Camera) error

	// Release frees the GPU resources of a GameObject. Its model's meshes are freed when no
	// other drawn object uses the same model.
	//
	// Parameters:
	//   - obj: the GameObject whose resources are freed
	Release(obj game_object.GameObject)

	// Close frees every resource the SceneRenderer created. The Renderer itself is not released.
	Close()
}

var _ SceneRenderer = &sceneRenderer{}

// NewSceneRenderer creates a SceneRenderer drawing through r.
//
// Parameters:
//   - r: the Renderer to draw with
//   - options: variadic list of SceneRendererBuilderOption functions
//
// Returns:
//   - SceneRenderer: the scene renderer
func NewSceneRenderer(r Renderer, options ...SceneRendererBuilderOption) SceneRenderer {
	s := &sceneRenderer{
		mu:          &sync.Mutex{},
		renderer:    r,
		logger:      slog.Default(),
		objects:     make(map[uint64]bind_group_provider.BindGroupProvider),
		objectModel: make(map[uint64]uint64),
		models:      make(map[uint64]*gpuModel),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// setup registers the lit pipelines and creates the per-frame bind group.
func (s *sceneRenderer) setup() error {
	if s.layouts != nil {
		return nil
	}

	single, err := pipeline.NewLitPipeline(material.PipelineKeyLit, wgpu.CullModeBack)
	if err != nil {
		return err
	}
	double, err := pipeline.NewLitPipeline(material.PipelineKeyLitDoubleSided, wgpu.CullModeNone)
	if err != nil {
		return err
	}
	if err := s.renderer.RegisterPipelines(single, double); err != nil {
		return err
	}

	layouts := single.BindGroupLayoutDescriptors()
	frame := bind_group_provider.NewBindGroupProvider("Frame", bind_group_provider.WithGroup(groupFrame))
	if err := s.renderer.InitBindGroup(frame, layouts[groupFrame]); err != nil {
		frame.Release()
		return fmt.Errorf("frame bind group: %w", err)
	}
	s.layouts = layouts
	s.frame = frame
	return nil
}

func (s *sceneRenderer) Render(sc scene.Scene, cam camera.Camera) error {
	if sc == nil || cam == nil {
		return errors.New("scene and camera are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setup(); err != nil {
		return err
	}
	s.renderer.SetClearColor(sc.Background())

	camUniform := cam.Uniform()
	lightUniform := light.GPULight{}
	if lights := sc.Lights(); len(lights) > 0 {
		lightUniform = lights[0].GPU()
	}
	writes := []bind_group_provider.BufferWrite{
		{Provider: s.frame, Binding: 0, Data: camUniform.Marshal()},
		{Provider: s.frame, Binding: 1, Data: lightUniform.Marshal()},
	}

	type draw struct {
		object bind_group_provider.BindGroupProvider
		model  *gpuModel
	}
	var draws []draw
	for _, obj := range sc.Children() {
		m := obj.Model()
		if !obj.Enabled() || m == nil {
			continue
		}
		objProvider, gm, err := s.upload(obj, m)
		if err != nil {
			return err
		}
		mat := obj.ModelMatrix()
		data := model.GPUModelData{Model: [16]float32(mat), Normal: common.NormalMatrix(mat)}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: objProvider, Binding: 0, Data: data.Marshal()})
		draws = append(draws, draw{object: objProvider, model: gm})
	}
	s.renderer.WriteBuffers(writes)

	if err := s.renderer.BeginFrame(); err != nil {
		return err
	}
	for _, d := range draws {
		for _, m := range d.model.meshes {
			err := s.renderer.DrawCall(m.material.PipelineKey(), m.mesh, s.frame, d.object, m.material.BindGroupProvider())
			if err != nil {
				s.logger.Error("draw", "mesh", m.mesh.Label(), "err", err)
			}
		}
	}
	s.renderer.EndFrame()
	s.renderer.Present()
	return nil
}

// upload returns the object's bind group and its model's meshes, creating whichever is missing.
func (s *sceneRenderer) upload(obj game_object.GameObject, m model.Model) (bind_group_provider.BindGroupProvider, *gpuModel, error) {
	// an object whose model was swapped drops its hold on the old one
	if prev, ok := s.objectModel[obj.ID()]; ok && prev != m.ID() {
		s.releaseModel(prev)
		delete(s.objectModel, obj.ID())
	}

	gm, ok := s.models[m.ID()]
	if !ok {
		var err error
		if gm, err = s.uploadModel(m); err != nil {
			return nil, nil, err
		}
		s.models[m.ID()] = gm
	}
	if _, ok := s.objectModel[obj.ID()]; !ok {
		s.objectModel[obj.ID()] = m.ID()
		gm.users++
	}

	objProvider, ok := s.objects[obj.ID()]
	if !ok {
		objProvider = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Object %d", obj.ID()), bind_group_provider.WithGroup(groupObject))
		if err := s.renderer.InitBindGroup(objProvider, s.layouts[groupObject]); err != nil {
			objProvider.Release()
			return nil, nil, fmt.Errorf("object %d bind group: %w", obj.ID(), err)
		}
		s.objects[obj.ID()] = objProvider
	}
	return objProvider, gm, nil
}

func (s *sceneRenderer) uploadModel(m model.Model) (*gpuModel, error) {
	gm := &gpuModel{}
	materials := make(map[int]material.Material)

	for i, mesh := range m.Meshes() {
		if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
			continue
		}
		label := fmt.Sprintf("%s mesh %d", m.Name(), i)
		meshProvider := bind_group_provider.NewBindGroupProvider(label)
		err := s.renderer.InitMeshBuffers(meshProvider, model.MarshalVertices(mesh.Vertices), model.MarshalIndices(mesh.Indices), len(mesh.Indices))
		if err != nil {
			meshProvider.Release()
			releaseGPUModel(gm)
			return nil, fmt.Errorf("%s: %w", label, err)
		}

		mat, ok := materials[mesh.MaterialIndex]
		if !ok {
			if mat, err = s.uploadMaterial(m.Material(mesh.MaterialIndex)); err != nil {
				meshProvider.Release()
				releaseGPUModel(gm)
				return nil, fmt.Errorf("%s: %w", label, err)
			}
			materials[mesh.MaterialIndex] = mat
		}
		gm.meshes = append(gm.meshes, gpuMesh{mesh: meshProvider, material: mat})
	}

	s.logger.Debug("model uploaded", "model", m.Name(), "meshes", len(gm.meshes), "materials", len(materials))
	return gm, nil
}

func (s *sceneRenderer) uploadMaterial(imported *common.ImportedMaterial) (material.Material, error) {
	mat := material.FromImported(imported)
	provider := bind_group_provider.NewBindGroupProvider(mat.Name()+" Material", bind_group_provider.WithGroup(groupMaterial))
	mat.SetBindGroupProvider(provider)

	err := s.renderer.InitTextureView(provider, bindingMaterialTexture, mat.Texture())
	if err == nil {
		err = s.renderer.InitSampler(provider, bindingMaterialSampler, mat.SamplerDescriptor())
	}
	if err == nil {
		err = s.renderer.InitBindGroup(provider, s.layouts[groupMaterial])
	}
	if err != nil {
		mat.Release()
		return nil, fmt.Errorf("material %s: %w", mat.Name(), err)
	}

	params := mat.Params()
	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: bindingMaterialParams, Data: params.Marshal()},
	})
	return mat, nil
}

func (s *sceneRenderer) releaseModel(id uint64) {
	gm, ok := s.models[id]
	if !ok {
		return
	}
	gm.users--
	if gm.users > 0 {
		return
	}
	releaseGPUModel(gm)
	delete(s.models, id)
}

// releaseGPUModel frees the meshes and materials of gm. Materials are shared between meshes.
func releaseGPUModel(gm *gpuModel) {
	released := make(map[material.Material]bool)
	for _, m := range gm.meshes {
		m.mesh.Release()
		if !released[m.material] {
			m.material.Release()
			released[m.material] = true
		}
	}
	gm.meshes = nil
}

func (s *sceneRenderer) Release(obj game_object.GameObject) {
	if obj == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.objects[obj.ID()]; ok {
		p.Release()
		delete(s.objects, obj.ID())
	}
	if id, ok := s.objectModel[obj.ID()]; ok {
		delete(s.objectModel, obj.ID())
		s.releaseModel(id)
	}
}

func (s *sceneRenderer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.objects {
		p.Release()
		delete(s.objects, id)
	}
	for id, gm := range s.models {
		releaseGPUModel(gm)
		delete(s.models, id)
	}
	clear(s.objectModel)
	if s.frame != nil {
		s.frame.Release()
		s.frame = nil
	}
	s.layouts = nil
}
