package light

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing; a zero vector is ignored.
//
// Parameters:
//   - x, y, z: direction components
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		if d := (mgl32.Vec3{x, y, z}); d.Len() > 0 {
			l.direction = d.Normalize()
		}
	}
}

// WithTarget aims the light from its position toward a world-space point.
// Must be applied after WithPosition.
//
// Parameters:
//   - x, y, z: the point to aim at
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		if d := (mgl32.Vec3{x, y, z}).Sub(l.position); d.Len() > 0 {
			l.direction = d.Normalize()
		}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r, g, b: color components
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithHexColor sets the light color from a 0xRRGGBB value.
func WithHexColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.HexColor(hex)
	}
}

// WithIntensity is an option builder that sets the intensity multiplier of the light.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAmbient sets the fraction of the light applied uniformly to all surfaces.
func WithAmbient(ambient float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = ambient
	}
}

// WithSize sets the emitter dimensions of an area light.
//
// Parameters:
//   - width, height: emitter dimensions in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the size option to a lightImpl
func WithSize(width, height float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.width, l.height = width, height
	}
}

// WithEnabled sets whether the light starts enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
