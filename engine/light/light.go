package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	LightTypePoint

	// LightTypeArea represents a rectangular emitter placed at a position and facing a
	// direction. It is shaded as a directional source with a soft ambient fill.
	LightTypeArea
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeArea:
		return "area"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     [3]float32
	intensity float32
	ambient   float32
	width     float32
	height    float32
	enabled   bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities that contribute to the final pixel color during the
// lit forward pass. All light types share this interface; type-specific properties
// (e.g. the emitter size of area lights) return zero values when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction the light travels in.
	// Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Ambient returns the fraction of the light's color applied uniformly to all surfaces.
	//
	// Returns:
	//   - float32: the ambient factor
	Ambient() float32

	// Size returns the width and height of an area light's emitter.
	//
	// Returns:
	//   - width, height: emitter dimensions in world units
	Size() (width, height float32)

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	// A zero vector is ignored.
	//
	// Parameters:
	//   - x, y, z: direction components
	SetDirection(x, y, z float32)

	// LookAt aims the light from its current position toward a world-space point.
	//
	// Parameters:
	//   - x, y, z: the point to aim at
	LookAt(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// GPU returns the light packed for GPU upload.
	//
	// Returns:
	//   - GPULight: the GPU-aligned light record
	GPU() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		lightType: lightType,
		direction: mgl32.Vec3{0, 0, -1},
		color:     [3]float32{1, 1, 1},
		intensity: 1,
		ambient:   0.15,
		enabled:   true,
	}
	if lightType == LightTypeArea {
		l.width, l.height = 10, 10
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Ambient() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambient
}

func (l *lightImpl) Size() (width, height float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.width, l.height
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = mgl32.Vec3{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d := (mgl32.Vec3{x, y, z}); d.Len() > 0 {
		l.direction = d.Normalize()
	}
}

func (l *lightImpl) LookAt(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d := (mgl32.Vec3{x, y, z}).Sub(l.position); d.Len() > 0 {
		l.direction = d.Normalize()
	}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) GPU() GPULight {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := GPULight{
		Position:  l.position,
		LightType: uint32(l.lightType),
		Color:     l.color,
		Intensity: l.intensity,
		Direction: l.direction,
		Ambient:   l.ambient,
		Extent:    [2]float32{l.width, l.height},
	}
	if l.enabled {
		g.Enabled = 1
	}
	return g
}
