package scene

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
)

// Scene is the root of the scene graph. It holds an ordered set of GameObjects,
// the lights illuminating them and the background color the frame is cleared to.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Add attaches a GameObject as the last child of the scene.
	// Adding an object that is already attached (by ID) is a no-op.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - bool: true if the object was attached by this call
	Add(obj game_object.GameObject) bool

	// Remove detaches a GameObject from the scene, preserving the order of the remaining children.
	//
	// Parameters:
	//   - obj: the GameObject to remove
	//
	// Returns:
	//   - bool: true if the object was attached before the call
	Remove(obj game_object.GameObject) bool

	// Contains reports whether a GameObject is currently attached.
	//
	// Parameters:
	//   - obj: the GameObject to look for
	//
	// Returns:
	//   - bool: true if attached
	Contains(obj game_object.GameObject) bool

	// Get retrieves an attached GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Children returns a copy of the attached GameObjects in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: the children
	Children() []game_object.GameObject

	// Len returns the number of attached GameObjects.
	//
	// Returns:
	//   - int: the child count
	Len() int

	// Clear detaches all GameObjects and returns them.
	//
	// Returns:
	//   - []game_object.GameObject: the objects that were attached
	Clear() []game_object.GameObject

	// AddLight adds a light source to the scene. Adding the same light twice is a no-op.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source from the scene by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns a copy of the lights currently registered in the scene.
	//
	// Returns:
	//   - []light.Light: the scene's light list
	Lights() []light.Light

	// Background returns the RGBA color the frame is cleared to.
	//
	// Returns:
	//   - [4]float64: the clear color
	Background() [4]float64

	// SetBackground sets the RGBA color the frame is cleared to.
	//
	// Parameters:
	//   - color: the clear color
	SetBackground(color [4]float64)
}

type scene struct {
	mu         *sync.RWMutex
	name       string
	children   []game_object.GameObject
	lights     []light.Light
	background [4]float64
}

var _ Scene = &scene{}

// NewScene creates a new empty Scene with the provided options applied.
// The default background is opaque black.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.RWMutex{},
		background: [4]float64{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Add(obj game_object.GameObject) bool {
	if obj == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

func (s *scene) add(obj game_object.GameObject) bool {
	if s.indexOf(obj.ID()) >= 0 {
		return false
	}
	s.children = append(s.children, obj)
	return true
}

func (s *scene) Remove(obj game_object.GameObject) bool {
	if obj == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(obj.ID())
	if i < 0 {
		return false
	}
	s.children = slices.Delete(s.children, i, i+1)
	return true
}

func (s *scene) Contains(obj game_object.GameObject) bool {
	if obj == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(obj.ID()) >= 0
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.children[i]
	}
	return nil
}

func (s *scene) Children() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.children)
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children)
}

func (s *scene) Clear() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.children
	s.children = nil
	return removed
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.lights, l) {
		return
	}
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = slices.DeleteFunc(s.lights, func(existing light.Light) bool {
		return existing == l
	})
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) Background() [4]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(color [4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = color
}

// indexOf returns the position of the child with the given ID, or -1. Caller holds the lock.
func (s *scene) indexOf(id uint64) int {
	return slices.IndexFunc(s.children, func(c game_object.GameObject) bool {
		return c.ID() == id
	})
}
