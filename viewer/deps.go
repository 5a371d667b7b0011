package viewer

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// AssetLoader starts loads without blocking and delivers their outcome on Results.
// loader.AsyncLoader satisfies it.
type AssetLoader interface {
	Request(path string) uint64
	Reload(path string) uint64
	Evict(path string) bool
	Results() <-chan loader.LoadResult
}

// Surface is the render target that follows the window size. renderer.Renderer satisfies it.
type Surface interface {
	Resize(width, height int)
	Size() (width, height int)
}

// Drawer draws the scene and frees GPU state of detached objects.
// renderer.SceneRenderer satisfies it.
type Drawer interface {
	Render(sc scene.Scene, cam camera.Camera) error
	Release(obj game_object.GameObject)
}

// Deps are the collaborators a Viewer drives. Loader, Surface, Scene and Camera are
// required; a nil Drawer makes RenderFrame skip drawing.
type Deps struct {
	Loader  AssetLoader
	Surface Surface
	Drawer  Drawer
	Scene   scene.Scene
	Camera  camera.Camera
}
