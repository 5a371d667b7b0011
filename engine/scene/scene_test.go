package scene

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveKeepsOrder(t *testing.T) {
	s := NewScene(WithName("viewer"))
	a := game_object.NewGameObject()
	b := game_object.NewGameObject()
	c := game_object.NewGameObject()

	assert.True(t, s.Add(a))
	assert.True(t, s.Add(b))
	assert.True(t, s.Add(c))
	assert.False(t, s.Add(b), "re-adding an attached child is a no-op")
	assert.False(t, s.Add(nil))
	require.Equal(t, 3, s.Len())

	assert.True(t, s.Remove(b))
	assert.False(t, s.Remove(b))
	assert.Equal(t, []game_object.GameObject{a, c}, s.Children())
	assert.False(t, s.Contains(b))
	assert.True(t, s.Contains(c))
	assert.Same(t, c, s.Get(c.ID()))
	assert.Nil(t, s.Get(b.ID()))
	assert.Equal(t, "viewer", s.Name())
}

func TestChildrenIsACopy(t *testing.T) {
	a := game_object.NewGameObject()
	s := NewScene(WithObjects(a, a))
	require.Equal(t, 1, s.Len())

	children := s.Children()
	children[0] = nil
	assert.Same(t, a, s.Children()[0])

	removed := s.Clear()
	assert.Equal(t, []game_object.GameObject{a}, removed)
	assert.Zero(t, s.Len())
}

func TestLights(t *testing.T) {
	l := light.NewLight(light.LightTypeArea)
	s := NewScene(WithLights(l))
	s.AddLight(l)
	s.AddLight(nil)
	assert.Len(t, s.Lights(), 1)

	s.RemoveLight(l)
	assert.Empty(t, s.Lights())
}

func TestBackground(t *testing.T) {
	s := NewScene()
	assert.Equal(t, [4]float64{0, 0, 0, 1}, s.Background())

	s = NewScene(WithBackground(0xff0000))
	assert.Equal(t, [4]float64{1, 0, 0, 1}, s.Background())

	s.SetBackground([4]float64{0.1, 0.2, 0.3, 1})
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1}, s.Background())
}

func TestConcurrentAdd(t *testing.T) {
	s := NewScene()
	obj := game_object.NewGameObject()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(obj)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}
