package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// objectCount hands out IDs to objects created without WithID.
var objectCount atomic.Uint64

type gameObject struct {
	mu            *sync.Mutex
	id            uint64
	enabled       atomic.Bool
	mdl           model.Model
	position      [3]float32
	rotation      [3]float32
	scale         [3]float32
	castShadow    bool
	receiveShadow bool
}

// GameObject defines the interface for a scene node that places a Model in the world.
// Transform state lives on the object itself; all accessors are safe for concurrent use.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Position returns the object's world position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles about X, Y (yaw) and Z
	Rotation() (rx, ry, rz float32)

	// Yaw returns the rotation about the vertical axis in radians.
	//
	// Returns:
	//   - float32: the yaw angle
	Yaw() float32

	// Scale returns the object's scale factors.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// CastShadow reports whether the object is flagged to cast shadows.
	//
	// Returns:
	//   - bool: true if the object casts shadows
	CastShadow() bool

	// ReceiveShadow reports whether the object is flagged to receive shadows.
	//
	// Returns:
	//   - bool: true if the object receives shadows
	ReceiveShadow() bool

	// TransformData reads the whole transform under a single lock.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - rot: rotation as [3]float32 (rx, ry, rz)
	//   - scale: scale as [3]float32 (x, y, z)
	TransformData() (pos, rot, scale [3]float32)

	// ModelMatrix composes the world matrix from the current transform.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	ModelMatrix() mgl32.Mat4

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetPosition updates the object's world position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation updates the Euler rotation. The yaw component is wrapped into [0, 2pi).
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// AddYaw rotates the object about the vertical axis by delta radians.
	// The accumulated yaw is kept in [0, 2pi).
	//
	// Parameters:
	//   - delta: the angle to add in radians, may be negative
	//
	// Returns:
	//   - float32: the new yaw
	AddYaw(delta float32) float32

	// SetScale updates the object's scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetShadows sets the shadow casting and receiving flags.
	//
	// Parameters:
	//   - cast: whether the object casts shadows
	//   - receive: whether the object receives shadows
	SetShadows(cast, receive bool)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects are enabled, unit scaled and placed at the origin unless configured otherwise.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.Mutex{},
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.id == 0 {
		obj.id = objectCount.Add(1)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) Yaw() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation[1]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) CastShadow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.castShadow
}

func (g *gameObject) ReceiveShadow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.receiveShadow
}

func (g *gameObject) TransformData() (pos, rot, scale [3]float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position, g.rotation, g.scale
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	pos, rot, scale := g.TransformData()
	return common.ModelMatrix(pos, rot, scale)
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = [3]float32{rx, common.WrapAngle(ry), rz}
}

func (g *gameObject) AddYaw(delta float32) float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation[1] = common.WrapAngle(g.rotation[1] + delta)
	return g.rotation[1]
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{sx, sy, sz}
}

func (g *gameObject) SetShadows(cast, receive bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.castShadow = cast
	g.receiveShadow = receive
}
