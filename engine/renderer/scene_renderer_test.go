package renderer

import (
	"errors"
	"testing"

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawRecord struct {
	key    string
	mesh   string
	groups []int
}

// fakeRenderer records calls instead of touching a GPU.
type fakeRenderer struct {
	pipelines   map[string]pipeline.Pipeline
	clear       [4]float64
	meshUploads int
	bindGroups  []string
	textures    []common.TextureStagingData
	writes      []bind_group_provider.BufferWrite
	draws       []drawRecord
	frames      int
	beginErr    error
}

var _ Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return f.pipelines[key] }
func (f *fakeRenderer) RegisterPipelines(ps ...pipeline.Pipeline) error {
	for _, p := range ps {
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}
func (f *fakeRenderer) Resize(int, int) {}
func (f *fakeRenderer) Size() (int, int) { return 0, 0 }
func (f *fakeRenderer) SetClearColor(c [4]float64) { f.clear = c }
func (f *fakeRenderer) SetPresentMode(PresentMode) {}
func (f *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, n int) error {
	f.meshUploads++
	p.SetMesh(nil, nil, n)
	return nil
}
func (f *fakeRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor) error {
	f.bindGroups = append(f.bindGroups, p.Label())
	return nil
}
func (f *fakeRenderer) InitTextureView(_ bind_group_provider.BindGroupProvider, _ int, s common.TextureStagingData) error {
	f.textures = append(f.textures, s)
	return nil
}
func (f *fakeRenderer) InitSampler(bind_group_provider.BindGroupProvider, int, wgpu.SamplerDescriptor) error {
	return nil
}
func (f *fakeRenderer) WriteBuffers(w []bind_group_provider.BufferWrite) { f.writes = append(f.writes, w...) }
func (f *fakeRenderer) BeginFrame() error { return f.beginErr }
func (f *fakeRenderer) DrawCall(key string, mesh bind_group_provider.BindGroupProvider, groups ...bind_group_provider.BindGroupProvider) error {
	rec := drawRecord{key: key, mesh: mesh.Label()}
	for _, g := range groups {
		rec.groups = append(rec.groups, g.Group())
	}
	f.draws = append(f.draws, rec)
	return nil
}
func (f *fakeRenderer) EndFrame() {}
func (f *fakeRenderer) Present() { f.frames++ }
func (f *fakeRenderer) Release() {}

func triangleModel(name string, doubleSided bool) model.Model {
	return model.NewModel(
		model.WithName(name),
		model.WithMeshes(model.ImportedMesh{
			Name:     "tri",
			Vertices: make([]model.GPUVertex, 3),
			Indices:  []uint32{0, 1, 2},
		}),
		model.WithMaterials(common.ImportedMaterial{Name: "paint", BaseColor: [4]float32{1, 0, 0, 1}, DoubleSided: doubleSided}),
	)
}

func TestSceneRendererDrawsEnabledChildren(t *testing.T) {
	fr := newFakeRenderer()
	sr := NewSceneRenderer(fr)
	defer sr.Close()

	shown := game_object.NewGameObject(game_object.WithModel(triangleModel("shown", true)))
	hidden := game_object.NewGameObject(game_object.WithModel(triangleModel("hidden", false)), game_object.WithEnabled(false))
	sc := scene.NewScene(
		scene.WithObjects(shown, hidden),
		scene.WithLights(light.NewLight(light.LightTypeArea)),
		scene.WithBackground(0x000000),
	)

	require.NoError(t, sr.Render(sc, camera.NewCamera()))

	assert.Equal(t, 1, fr.frames)
	assert.Equal(t, 1, fr.meshUploads)
	assert.Contains(t, fr.pipelines, material.PipelineKeyLit)
	assert.Contains(t, fr.pipelines, material.PipelineKeyLitDoubleSided)
	require.Len(t, fr.draws, 1)
	assert.Equal(t, material.PipelineKeyLitDoubleSided, fr.draws[0].key)
	assert.Equal(t, []int{0, 1, 2}, fr.draws[0].groups)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, fr.clear)

	// untextured materials bind the 1x1 white fallback
	require.Len(t, fr.textures, 1)
	assert.Equal(t, uint32(1), fr.textures[0].Width)
}

func TestSceneRendererUploadsOncePerModel(t *testing.T) {
	fr := newFakeRenderer()
	sr := NewSceneRenderer(fr)
	defer sr.Close()

	m := triangleModel("shared", false)
	a := game_object.NewGameObject(game_object.WithModel(m))
	b := game_object.NewGameObject(game_object.WithModel(m))
	sc := scene.NewScene(scene.WithObjects(a, b))
	cam := camera.NewCamera()

	require.NoError(t, sr.Render(sc, cam))
	require.NoError(t, sr.Render(sc, cam))
	assert.Equal(t, 1, fr.meshUploads)
	assert.Len(t, fr.draws, 4)

	// the model stays resident while b still uses it
	sr.Release(a)
	require.NoError(t, sr.Render(sc, cam))
	assert.Equal(t, 1, fr.meshUploads)

	sr.Release(a)
	sr.Release(b)
	require.NoError(t, sr.Render(scene.NewScene(scene.WithObjects(b)), cam))
	assert.Equal(t, 2, fr.meshUploads)
}

func TestSceneRendererWritesUniforms(t *testing.T) {
	fr := newFakeRenderer()
	sr := NewSceneRenderer(fr)
	defer sr.Close()

	obj := game_object.NewGameObject(game_object.WithModel(triangleModel("m", false)))
	require.NoError(t, sr.Render(scene.NewScene(scene.WithObjects(obj)), camera.NewCamera()))

	sizes := make(map[int]int)
	for _, w := range fr.writes {
		sizes[len(w.Data)]++
	}
	assert.Equal(t, 1, sizes[80], "camera")
	assert.Equal(t, 1, sizes[64], "light")
	assert.Equal(t, 1, sizes[112], "model data")
	assert.Equal(t, 1, sizes[32], "material params")
}

func TestSceneRendererBeginFrameError(t *testing.T) {
	fr := newFakeRenderer()
	fr.beginErr = errors.New("surface lost")
	sr := NewSceneRenderer(fr)
	defer sr.Close()

	err := sr.Render(scene.NewScene(), camera.NewCamera())
	assert.EqualError(t, err, "surface lost")
	assert.Zero(t, fr.frames)
	assert.Error(t, sr.Render(nil, camera.NewCamera()))
}
