// Package viewer holds the interaction state of the RX-7 viewer: which model and camera
// preset are shown, drag rotation and the swap of models as asynchronous loads complete.
// It only talks to its collaborators through interfaces, so it runs without a GPU or window.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// YawPerFrame is the automatic rotation applied by every RenderFrame, in radians.
	YawPerFrame float32 = 0.01

	// YawPerPixel converts horizontal drag distance into radians.
	YawPerPixel float32 = 0.005

	// ModelScale is the uniform scale of an attached model.
	ModelScale float32 = 5

	FieldOfView float32 = 75
	Near        float32 = 0.1
	Far         float32 = 1000

	DefaultStockPath = "3dmodels/rx7stock.glb"
	DefaultEditPath  = "3dmodels/rx7fcedit.glb"
)

// ModelPosition is where an attached model is placed; both camera presets look at it.
var ModelPosition = [3]float32{0, 10, 0}

var (
	frontEye = [3]float32{0, 15, 18}
	topEye   = [3]float32{0, 40, 0}
	lightPos = [3]float32{9, 18, 15}
)

// ErrMissingDeps is returned by New when a required collaborator is nil.
var ErrMissingDeps = errors.New("viewer: loader, surface, scene and camera are required")

// viewer is the implementation of the Viewer interface.
type viewer struct {
	deps   Deps
	logger *slog.Logger

	stockPath string
	editPath  string
	title     string
	onTitle   func(string)

	toggleViewKey  common.Key
	toggleModelKey common.Key

	initialized bool
	isStock     bool
	frontView   bool
	dragging    bool
	lastX       float64

	active     game_object.GameObject
	light      light.Light
	shownTitle string
}

// Viewer is the viewer controller. All methods must be called from the UI thread; loads
// complete on worker goroutines but are only applied by Pump or HandleLoadResult.
type Viewer interface {
	// Initialize configures the camera for the surface size and the front preset, adds the
	// area light and requests the initial model. Calls after the first are ignored.
	Initialize()

	// LoadAsset requests an asynchronous load of path. The result is applied when it is
	// pumped; loads already in flight are not cancelled.
	//
	// Parameters:
	//   - path: the asset to load
	//
	// Returns:
	//   - uint64: the loader ticket
	LoadAsset(path string) uint64

	// HandleLoadResult applies one completed load. A successful result replaces the
	// attached model, whichever request it answers. A failure is logged and leaves the
	// attached model as it was.
	//
	// Parameters:
	//   - res: the completed load
	HandleLoadResult(res loader.LoadResult)

	// Pump applies every load result that is ready without blocking.
	//
	// Returns:
	//   - int: the number of results applied
	Pump() int

	// OnWindowResize sets the camera aspect to width/height and resizes the surface.
	// Non-positive sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	OnWindowResize(width, height int)

	// RenderFrame advances the attached model's yaw by YawPerFrame and draws the scene.
	//
	// Returns:
	//   - error: the Drawer's error, if any
	RenderFrame() error

	// OnPointerDown starts a drag at x.
	OnPointerDown(x float64)

	// OnPointerMove rotates the attached model by (x - last x) * YawPerPixel while dragging.
	OnPointerMove(x float64)

	// OnPointerUp ends the drag.
	OnPointerUp()

	// OnKey runs the action bound to key, if any.
	//
	// Parameters:
	//   - key: the pressed key
	//
	// Returns:
	//   - bool: true if the key was bound
	OnKey(key common.Key) bool

	// ToggleView switches between the front and top camera presets.
	ToggleView()

	// ToggleModel switches between the stock and edit variants and loads the new one.
	ToggleModel()

	// OnAssetChanged reloads the attached model when path is the file it came from. A change
	// to the other configured variant only evicts its cached model, so the next toggle reads
	// the new file.
	//
	// Parameters:
	//   - path: the file that changed on disk
	//
	// Returns:
	//   - bool: true if a reload was requested
	OnAssetChanged(path string) bool

	// ActiveModel returns the attached model node, or nil before the first load succeeds.
	ActiveModel() game_object.GameObject

	// Yaw returns the attached model's yaw, or 0 with no model.
	Yaw() float32

	// IsFrontView reports whether the front camera preset is active.
	IsFrontView() bool

	// IsStockModel reports whether the stock variant is selected.
	IsStockModel() bool

	// CurrentModelPath returns the path of the selected variant.
	CurrentModelPath() string

	// Dragging reports whether a drag is in progress.
	Dragging() bool

	// Title returns the window title describing the current view and model.
	Title() string

	// Light returns the scene light added by Initialize.
	Light() light.Light
}

var _ Viewer = &viewer{}

// New creates a Viewer over deps. Nothing is loaded until Initialize.
//
// Parameters:
//   - deps: the collaborators to drive
//   - options: variadic list of ViewerBuilderOption functions
//
// Returns:
//   - Viewer: the viewer
//   - error: ErrMissingDeps when a required collaborator is nil
func New(deps Deps, options ...ViewerBuilderOption) (Viewer, error) {
	if deps.Loader == nil || deps.Surface == nil || deps.Scene == nil || deps.Camera == nil {
		return nil, ErrMissingDeps
	}
	v := &viewer{
		deps:           deps,
		logger:         slog.Default(),
		stockPath:      DefaultStockPath,
		editPath:       DefaultEditPath,
		title:          "RX-7 Viewer",
		toggleViewKey:  common.KeyV,
		toggleModelKey: common.KeyM,
		frontView:      true,
	}
	for _, opt := range options {
		opt(v)
	}
	return v, nil
}

func (v *viewer) Initialize() {
	if v.initialized {
		v.logger.Warn("viewer already initialized")
		return
	}
	v.initialized = true

	cam := v.deps.Camera
	cam.SetFov(mgl32.DegToRad(FieldOfView))
	cam.SetNear(Near)
	cam.SetFar(Far)
	if w, h := v.deps.Surface.Size(); w > 0 && h > 0 {
		cam.SetAspect(float32(w) / float32(h))
	}
	v.applyView()

	v.light = light.NewLight(light.LightTypeArea,
		light.WithHexColor(0xffffff),
		light.WithIntensity(10),
		light.WithPosition(lightPos[0], lightPos[1], lightPos[2]),
		light.WithTarget(ModelPosition[0], ModelPosition[1], ModelPosition[2]),
	)
	v.deps.Scene.AddLight(v.light)

	v.logger.Info("viewer initialized", "stock", v.stockPath, "edit", v.editPath, "initial", v.CurrentModelPath())
	v.LoadAsset(v.CurrentModelPath())
	v.updateTitle()
}

func (v *viewer) LoadAsset(path string) uint64 {
	ticket := v.deps.Loader.Request(path)
	v.logger.Debug("asset requested", "path", path, "ticket", ticket)
	return ticket
}

func (v *viewer) HandleLoadResult(res loader.LoadResult) {
	if res.Err != nil || res.Model == nil {
		err := res.Err
		if err == nil {
			err = errors.New("loader returned no model")
		}
		v.logger.Error("asset load failed", "path", res.Path, "ticket", res.Ticket, "err", err)
		return
	}
	v.attach(res.Model)
	v.logger.Info("model attached", "path", res.Path, "ticket", res.Ticket, "model", res.Model.Name())
}

// attach replaces the active model node with a new node for m.
func (v *viewer) attach(m model.Model) {
	if v.active != nil {
		v.deps.Scene.Remove(v.active)
		if v.deps.Drawer != nil {
			v.deps.Drawer.Release(v.active)
		}
		v.active = nil
	}

	obj := game_object.NewGameObject(
		game_object.WithModel(m),
		game_object.WithPosition(ModelPosition[0], ModelPosition[1], ModelPosition[2]),
		game_object.WithRotation(0, 0, 0),
		game_object.WithUniformScale(ModelScale),
		game_object.WithShadows(true, true),
	)
	v.deps.Scene.Add(obj)
	v.active = obj
}

func (v *viewer) Pump() int {
	n := 0
	results := v.deps.Loader.Results()
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return n
			}
			v.HandleLoadResult(res)
			n++
		default:
			return n
		}
	}
}

func (v *viewer) OnWindowResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.deps.Camera.SetAspect(float32(width) / float32(height))
	v.deps.Surface.Resize(width, height)
}

func (v *viewer) RenderFrame() error {
	if v.active != nil {
		v.active.AddYaw(YawPerFrame)
	}
	if v.deps.Drawer == nil {
		return nil
	}
	return v.deps.Drawer.Render(v.deps.Scene, v.deps.Camera)
}

func (v *viewer) OnPointerDown(x float64) {
	v.dragging = true
	v.lastX = x
}

func (v *viewer) OnPointerMove(x float64) {
	if !v.dragging || v.active == nil {
		return
	}
	delta := x - v.lastX
	v.active.AddYaw(float32(delta) * YawPerPixel)
	v.lastX = x
}

func (v *viewer) OnPointerUp() {
	v.dragging = false
}

func (v *viewer) OnKey(key common.Key) bool {
	switch key {
	case v.toggleViewKey:
		v.ToggleView()
	case v.toggleModelKey:
		v.ToggleModel()
	default:
		return false
	}
	return true
}

func (v *viewer) ToggleView() {
	v.frontView = !v.frontView
	v.applyView()
	v.updateTitle()
}

// applyView moves the camera to the active preset. Both presets look at the model.
func (v *viewer) applyView() {
	eye := frontEye
	if !v.frontView {
		eye = topEye
	}
	v.deps.Camera.SetPosition(eye[0], eye[1], eye[2])
	v.deps.Camera.LookAt(ModelPosition[0], ModelPosition[1], ModelPosition[2])
}

func (v *viewer) ToggleModel() {
	v.isStock = !v.isStock
	v.LoadAsset(v.CurrentModelPath())
	v.updateTitle()
}

func (v *viewer) OnAssetChanged(path string) bool {
	var activePath string
	if v.active != nil && v.active.Model() != nil {
		activePath = v.active.Model().Path()
	}
	if activePath == "" || !samePath(activePath, path) {
		v.evictVariant(path)
		return false
	}
	ticket := v.deps.Loader.Reload(activePath)
	v.logger.Info("asset changed, reloading", "path", activePath, "ticket", ticket)
	return true
}

// evictVariant forgets the cached model of whichever configured variant path names.
func (v *viewer) evictVariant(path string) {
	for _, variant := range []string{v.stockPath, v.editPath} {
		if samePath(variant, path) {
			evicted := v.deps.Loader.Evict(variant)
			v.logger.Debug("asset changed, cache evicted", "path", variant, "evicted", evicted)
			return
		}
	}
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func (v *viewer) ActiveModel() game_object.GameObject {
	return v.active
}

func (v *viewer) Yaw() float32 {
	if v.active == nil {
		return 0
	}
	return v.active.Yaw()
}

func (v *viewer) IsFrontView() bool {
	return v.frontView
}

func (v *viewer) IsStockModel() bool {
	return v.isStock
}

func (v *viewer) CurrentModelPath() string {
	if v.isStock {
		return v.stockPath
	}
	return v.editPath
}

func (v *viewer) Dragging() bool {
	return v.dragging
}

func (v *viewer) Light() light.Light {
	return v.light
}

func (v *viewer) Title() string {
	view := "front"
	if !v.frontView {
		view = "top"
	}
	variant := "edit"
	if v.isStock {
		variant = "stock"
	}
	return fmt.Sprintf("%s - %s - %s", v.title, view, variant)
}

// updateTitle pushes the title to the title callback when it changed.
func (v *viewer) updateTitle() {
	t := v.Title()
	if t == v.shownTitle {
		return
	}
	v.shownTitle = t
	if v.onTitle != nil {
		v.onTitle(t)
	}
}
