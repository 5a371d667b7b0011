package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()

	assert.NotZero(t, obj.ID())
	assert.True(t, obj.Enabled())
	assert.Nil(t, obj.Model())

	x, y, z := obj.Position()
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32{x, y, z})
	sx, sy, sz := obj.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
	assert.False(t, obj.CastShadow())
	assert.False(t, obj.ReceiveShadow())

	assert.NotEqual(t, obj.ID(), NewGameObject().ID())
}

func TestNewGameObjectOptions(t *testing.T) {
	m := model.NewModel(model.WithName("car"))
	obj := NewGameObject(
		WithID(42),
		WithModel(m),
		WithPosition(0, 10, 0),
		WithUniformScale(5),
		WithRotation(0, -math32.Pi/2, 0),
		WithShadows(true, true),
		WithEnabled(false),
	)

	assert.Equal(t, uint64(42), obj.ID())
	assert.Same(t, m, obj.Model())
	assert.False(t, obj.Enabled())
	assert.True(t, obj.CastShadow())
	assert.True(t, obj.ReceiveShadow())

	pos, rot, scale := obj.TransformData()
	assert.Equal(t, [3]float32{0, 10, 0}, pos)
	assert.Equal(t, [3]float32{5, 5, 5}, scale)
	assert.InDelta(t, 3*math32.Pi/2, rot[1], 1e-5)
}

func TestAddYawWraps(t *testing.T) {
	obj := NewGameObject()

	for range 100 {
		obj.AddYaw(0.01)
	}
	assert.InDelta(t, 1.0, obj.Yaw(), 1e-4)

	obj.AddYaw(-2)
	assert.InDelta(t, common.TwoPi-1, obj.Yaw(), 1e-4)

	obj.AddYaw(common.TwoPi * 3)
	assert.InDelta(t, common.TwoPi-1, obj.Yaw(), 1e-3)
	assert.GreaterOrEqual(t, obj.Yaw(), float32(0))
	assert.Less(t, obj.Yaw(), common.TwoPi)
}

func TestSetters(t *testing.T) {
	obj := NewGameObject()
	obj.SetPosition(1, 2, 3)
	obj.SetScale(2, 2, 2)
	obj.SetRotation(0.5, 7, 0)
	obj.SetShadows(true, false)
	obj.SetEnabled(false)

	rx, ry, _ := obj.Rotation()
	assert.Equal(t, float32(0.5), rx)
	assert.InDelta(t, 7-common.TwoPi, ry, 1e-5)
	assert.True(t, obj.CastShadow())
	assert.False(t, obj.ReceiveShadow())
	assert.False(t, obj.Enabled())

	m := model.NewModel()
	obj.SetModel(m)
	assert.Same(t, m, obj.Model())
}

func TestModelMatrix(t *testing.T) {
	obj := NewGameObject(WithPosition(0, 10, 0), WithUniformScale(5), WithRotation(0, math32.Pi/2, 0))

	p := common.TransformPoint(obj.ModelMatrix(), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 10, p.Y(), 1e-4)
	assert.InDelta(t, -5, p.Z(), 1e-4)
}
