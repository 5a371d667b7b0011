package light

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAreaLight(t *testing.T) {
	l := NewLight(LightTypeArea,
		WithHexColor(0xffffff),
		WithIntensity(10),
		WithPosition(9, 18, 15),
		WithTarget(0, 10, 0),
	)

	assert.Equal(t, LightTypeArea, l.Type())
	assert.Equal(t, "area", l.Type().String())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(10), l.Intensity())
	assert.Equal(t, [3]float32{9, 18, 15}, l.Position())
	assert.True(t, l.Enabled())

	w, h := l.Size()
	assert.Equal(t, float32(10), w)
	assert.Equal(t, float32(10), h)

	d := l.Direction()
	length := math32.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	assert.InDelta(t, 1, length, 1e-5)
	// pointing down and back toward the origin
	assert.Less(t, d[0], float32(0))
	assert.Less(t, d[1], float32(0))
	assert.Less(t, d[2], float32(0))
}

func TestSetters(t *testing.T) {
	l := NewLight(LightTypeDirectional)

	l.SetDirection(0, 0, 0)
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())

	l.SetDirection(0, -2, 0)
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())

	l.SetPosition(0, 5, 0)
	l.LookAt(5, 5, 0)
	assert.Equal(t, [3]float32{1, 0, 0}, l.Direction())

	l.SetColor(0.5, 0.25, 1)
	l.SetIntensity(3)
	l.SetEnabled(false)
	assert.Equal(t, [3]float32{0.5, 0.25, 1}, l.Color())
	assert.Equal(t, float32(3), l.Intensity())
	assert.False(t, l.Enabled())

	w, h := l.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestGPULightMarshal(t *testing.T) {
	l := NewLight(LightTypeArea, WithPosition(9, 18, 15), WithIntensity(10), WithAmbient(0.2), WithSize(4, 2))
	g := l.GPU()

	require.Equal(t, 64, g.Size())
	buf := g.Marshal()
	require.Len(t, buf, 64)

	assert.Equal(t, uint32(LightTypeArea), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, float32(10), math32.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])))
	assert.Equal(t, float32(0.2), math32.Float32frombits(binary.LittleEndian.Uint32(buf[44:48])))
	assert.Equal(t, float32(4), math32.Float32frombits(binary.LittleEndian.Uint32(buf[48:52])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[56:60]))

	l.SetEnabled(false)
	off := l.GPU()
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(off.Marshal()[56:60]))
}
