package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithObjects attaches initial objects to the scene in order.
// Duplicate objects are attached once.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj != nil {
				s.add(obj)
			}
		}
	}
}

// WithLights registers initial lights.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithBackground sets the clear color from a 0xRRGGBB value with full opacity.
//
// Parameters:
//   - hex: the background color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(hex uint32) SceneBuilderOption {
	return func(s *scene) {
		c := common.HexColor(hex)
		s.background = [4]float64{float64(c[0]), float64(c[1]), float64(c[2]), 1}
	}
}
