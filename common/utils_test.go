package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, WrapRepeat, Coalesce(WrapDefault, WrapRepeat))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, [3]float32{1, 1, 1}, HexColor(0xffffff))
	c := HexColor(0xff0033)
	assert.InDeltaSlice(t, []float32{1, 0, 0.2}, c[:], 1e-6)
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
		ok   bool
	}{
		{"V", KeyV, true},
		{"m", KeyM, true},
		{" 7 ", Key('7'), true},
		{"f2", KeyF1 + 1, true},
		{"Escape", KeyEsc, true},
		{"", 0, false},
		{"?", 0, false},
		{"HYPER", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KeyFromName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
