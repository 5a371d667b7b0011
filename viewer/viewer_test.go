package viewer

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	requested []string
	reloaded  []string
	evicted   []string
	ticket    uint64
	results   chan loader.LoadResult
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{results: make(chan loader.LoadResult, 16)}
}

func (f *fakeLoader) Request(path string) uint64 {
	f.ticket++
	f.requested = append(f.requested, path)
	return f.ticket
}

func (f *fakeLoader) Reload(path string) uint64 {
	f.reloaded = append(f.reloaded, path)
	return f.Request(path)
}

func (f *fakeLoader) Evict(path string) bool {
	f.evicted = append(f.evicted, path)
	return true
}

func (f *fakeLoader) Results() <-chan loader.LoadResult {
	return f.results
}

// resolve delivers a successful load of path for ticket.
func (f *fakeLoader) resolve(ticket uint64, path string) model.Model {
	m := model.NewModel(model.WithName(path), model.WithPath(path))
	f.results <- loader.LoadResult{Ticket: ticket, Path: path, Model: m}
	return m
}

type fakeSurface struct {
	width, height int
	resizes       int
}

func (f *fakeSurface) Resize(width, height int) {
	f.width, f.height = width, height
	f.resizes++
}

func (f *fakeSurface) Size() (int, int) {
	return f.width, f.height
}

type fakeDrawer struct {
	renders  int
	released []game_object.GameObject
	err      error
}

func (f *fakeDrawer) Render(scene.Scene, camera.Camera) error {
	f.renders++
	return f.err
}

func (f *fakeDrawer) Release(obj game_object.GameObject) {
	f.released = append(f.released, obj)
}

type harness struct {
	loader  *fakeLoader
	surface *fakeSurface
	drawer  *fakeDrawer
	scene   scene.Scene
	camera  camera.Camera
	logs    *bytes.Buffer
	viewer  Viewer
}

func newHarness(t *testing.T, options ...ViewerBuilderOption) *harness {
	t.Helper()
	h := &harness{
		loader:  newFakeLoader(),
		surface: &fakeSurface{width: 1600, height: 900},
		drawer:  &fakeDrawer{},
		scene:   scene.NewScene(),
		camera:  camera.NewCamera(),
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v, err := New(Deps{
		Loader:  h.loader,
		Surface: h.surface,
		Drawer:  h.drawer,
		Scene:   h.scene,
		Camera:  h.camera,
	}, append([]ViewerBuilderOption{WithLogger(logger)}, options...)...)
	require.NoError(t, err)
	h.viewer = v
	return h
}

// loaded initializes the viewer and attaches the initial model.
func (h *harness) loaded(t *testing.T) {
	t.Helper()
	h.viewer.Initialize()
	h.loader.resolve(1, h.loader.requested[0])
	require.Equal(t, 1, h.viewer.Pump())
	require.NotNil(t, h.viewer.ActiveModel())
}

func wrapped(a float64) float32 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return float32(a)
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.ErrorIs(t, err, ErrMissingDeps)
}

func TestInitialize(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()

	assert.InDelta(t, 75*math.Pi/180, h.camera.Fov(), 1e-6)
	assert.InDelta(t, 0.1, h.camera.Near(), 1e-6)
	assert.InDelta(t, 1000, h.camera.Far(), 1e-6)
	assert.InDelta(t, 1600.0/900.0, h.camera.Aspect(), 1e-6)

	x, y, z := h.camera.Position()
	assert.Equal(t, [3]float32{0, 15, 18}, [3]float32{x, y, z})
	tx, ty, tz := h.camera.Target()
	assert.Equal(t, [3]float32{0, 10, 0}, [3]float32{tx, ty, tz})

	lights := h.scene.Lights()
	require.Len(t, lights, 1)
	assert.Equal(t, float32(10), lights[0].Intensity())
	assert.Equal(t, [3]float32{9, 18, 15}, lights[0].Position())

	// the edit variant is requested first
	assert.Equal(t, []string{DefaultEditPath}, h.loader.requested)
	assert.False(t, h.viewer.IsStockModel())
	assert.Nil(t, h.viewer.ActiveModel())

	h.viewer.Initialize()
	assert.Len(t, h.loader.requested, 1)
	assert.Len(t, h.scene.Lights(), 1)
}

func TestInitialStockOption(t *testing.T) {
	h := newHarness(t, WithInitialStock(true), WithModelPaths("a.glb", "b.glb"))
	h.viewer.Initialize()
	assert.Equal(t, []string{"a.glb"}, h.loader.requested)
	assert.True(t, h.viewer.IsStockModel())
}

func TestAttachPlacement(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)

	obj := h.viewer.ActiveModel()
	x, y, z := obj.Position()
	assert.Equal(t, [3]float32{0, 10, 0}, [3]float32{x, y, z})
	sx, sy, sz := obj.Scale()
	assert.Equal(t, [3]float32{5, 5, 5}, [3]float32{sx, sy, sz})
	assert.Zero(t, obj.Yaw())
	assert.True(t, obj.CastShadow())
	assert.True(t, obj.ReceiveShadow())
	assert.True(t, h.scene.Contains(obj))
}

func TestDragAccumulatesOnlyWhileActive(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)

	// moves before the button is down contribute nothing
	h.viewer.OnPointerMove(50)
	assert.Zero(t, h.viewer.Yaw())

	h.viewer.OnPointerDown(100)
	assert.True(t, h.viewer.Dragging())
	moves := []float64{110, 130, 90, 95}
	for _, x := range moves {
		h.viewer.OnPointerMove(x)
	}
	h.viewer.OnPointerUp()
	assert.False(t, h.viewer.Dragging())
	h.viewer.OnPointerMove(500)

	// deltas 10 + 20 - 40 + 5 = -5
	assert.InDelta(t, wrapped(-5*0.005), h.viewer.Yaw(), 1e-5)

	// a new drag starts from its own pointer-down position
	h.viewer.OnPointerDown(0)
	h.viewer.OnPointerMove(20)
	h.viewer.OnPointerUp()
	assert.InDelta(t, wrapped(15*0.005), h.viewer.Yaw(), 1e-5)
}

func TestDragWithoutModelIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()
	h.viewer.OnPointerDown(0)
	h.viewer.OnPointerMove(100)
	assert.Zero(t, h.viewer.Yaw())
	assert.True(t, h.viewer.Dragging())
}

func TestToggleViewIsInvolution(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()

	position := func() [3]float32 {
		x, y, z := h.camera.Position()
		return [3]float32{x, y, z}
	}
	assert.Equal(t, [3]float32{0, 15, 18}, position())

	h.viewer.ToggleView()
	assert.False(t, h.viewer.IsFrontView())
	assert.Equal(t, [3]float32{0, 40, 0}, position())
	tx, ty, tz := h.camera.Target()
	assert.Equal(t, [3]float32{0, 10, 0}, [3]float32{tx, ty, tz})

	h.viewer.ToggleView()
	assert.True(t, h.viewer.IsFrontView())
	assert.Equal(t, [3]float32{0, 15, 18}, position())
}

func TestToggleModelIsInvolution(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()

	for range 4 {
		h.viewer.ToggleModel()
	}
	assert.Equal(t, []string{DefaultEditPath, DefaultStockPath, DefaultEditPath, DefaultStockPath, DefaultEditPath}, h.loader.requested)
	assert.False(t, h.viewer.IsStockModel())
	assert.Equal(t, DefaultEditPath, h.viewer.CurrentModelPath())
}

func TestAtMostOneModelRegardlessOfOrder(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()
	h.viewer.ToggleModel()
	h.viewer.ToggleModel()

	// answers arrive out of request order; the last one to resolve wins
	h.loader.resolve(3, DefaultEditPath)
	h.loader.resolve(1, DefaultEditPath)
	last := h.loader.resolve(2, DefaultStockPath)
	assert.Equal(t, 3, h.viewer.Pump())

	assert.Equal(t, 1, h.scene.Len())
	assert.Same(t, last, h.viewer.ActiveModel().Model())
	assert.Len(t, h.drawer.released, 2)
}

func TestLoadFailureKeepsModel(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)
	before := h.viewer.ActiveModel()

	h.viewer.HandleLoadResult(loader.LoadResult{Ticket: 9, Path: "missing.glb", Err: errors.New("no such file")})
	h.viewer.HandleLoadResult(loader.LoadResult{Ticket: 10, Path: "empty.glb"})

	assert.Same(t, before, h.viewer.ActiveModel())
	assert.Equal(t, 1, h.scene.Len())
	assert.Empty(t, h.drawer.released)
	assert.Contains(t, h.logs.String(), "asset load failed")
	assert.Contains(t, h.logs.String(), "missing.glb")
}

func TestRenderFrameAdvancesYaw(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()

	// nothing to rotate yet, but the scene is still drawn
	require.NoError(t, h.viewer.RenderFrame())
	assert.Equal(t, 1, h.drawer.renders)

	h.loader.resolve(1, DefaultEditPath)
	h.viewer.Pump()

	const frames = 700
	h.viewer.OnPointerDown(0)
	for range frames {
		require.NoError(t, h.viewer.RenderFrame())
	}
	assert.InDelta(t, wrapped(frames*0.01), h.viewer.Yaw(), 1e-3)
	assert.Equal(t, frames+1, h.drawer.renders)

	h.drawer.err = errors.New("surface lost")
	assert.EqualError(t, h.viewer.RenderFrame(), "surface lost")
}

func TestResize(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()

	sizes := [][2]int{{800, 600}, {1, 1000}, {3840, 1}, {1280, 720}}
	for _, s := range sizes {
		h.viewer.OnWindowResize(s[0], s[1])
		assert.Equal(t, float32(s[0])/float32(s[1]), h.camera.Aspect())
		assert.Equal(t, s[0], h.surface.width)
		assert.Equal(t, s[1], h.surface.height)
	}

	h.viewer.OnWindowResize(0, 0)
	assert.Equal(t, len(sizes), h.surface.resizes)
	assert.Equal(t, float32(1280)/float32(720), h.camera.Aspect())
}

func TestToggleModelScenario(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)
	edit := h.viewer.ActiveModel()
	assert.Equal(t, DefaultEditPath, edit.Model().Path())

	h.viewer.ToggleModel()
	require.Equal(t, DefaultStockPath, h.loader.requested[len(h.loader.requested)-1])
	// the edit model stays until the stock load resolves
	assert.Same(t, edit, h.viewer.ActiveModel())

	h.loader.resolve(2, DefaultStockPath)
	h.viewer.Pump()

	assert.False(t, h.scene.Contains(edit))
	assert.Equal(t, []game_object.GameObject{edit}, h.drawer.released)
	assert.Equal(t, DefaultStockPath, h.viewer.ActiveModel().Model().Path())
	assert.Equal(t, 1, h.scene.Len())
}

func TestOnKey(t *testing.T) {
	h := newHarness(t, WithToggleKeys(common.KeyT, common.KeyR))
	h.viewer.Initialize()

	assert.False(t, h.viewer.OnKey(common.KeyV))
	assert.True(t, h.viewer.OnKey(common.KeyT))
	assert.False(t, h.viewer.IsFrontView())
	assert.True(t, h.viewer.OnKey(common.KeyR))
	assert.True(t, h.viewer.IsStockModel())
}

func TestOnAssetChanged(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()
	assert.False(t, h.viewer.OnAssetChanged(DefaultEditPath))

	h.loader.resolve(1, DefaultEditPath)
	h.viewer.Pump()

	assert.False(t, h.viewer.OnAssetChanged(DefaultStockPath))
	assert.True(t, h.viewer.OnAssetChanged("./3dmodels/../3dmodels/rx7fcedit.glb"))
	assert.Equal(t, []string{DefaultEditPath}, h.loader.reloaded)
}

func TestOnAssetChangedEvictsHiddenVariant(t *testing.T) {
	h := newHarness(t)
	h.viewer.Initialize()
	h.loader.resolve(1, DefaultEditPath)
	h.viewer.Pump()

	assert.False(t, h.viewer.OnAssetChanged(DefaultStockPath))
	assert.Empty(t, h.loader.reloaded)
	assert.Equal(t, []string{DefaultStockPath}, h.loader.evicted)

	h.viewer.ToggleModel()
	assert.Equal(t, []string{DefaultEditPath, DefaultStockPath}, h.loader.requested)

	assert.False(t, h.viewer.OnAssetChanged("3dmodels/unrelated.glb"))
	assert.Equal(t, []string{DefaultStockPath}, h.loader.evicted)
}

func TestTitle(t *testing.T) {
	var titles []string
	h := newHarness(t, WithTitle("FC3S"), WithTitleCallback(func(s string) { titles = append(titles, s) }))
	h.viewer.Initialize()
	h.viewer.ToggleView()
	h.viewer.ToggleModel()

	assert.Equal(t, []string{
		"FC3S - front - edit",
		"FC3S - top - edit",
		"FC3S - top - stock",
	}, titles)
	assert.Equal(t, "FC3S - top - stock", h.viewer.Title())
}
