package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type component struct {
	name string
}

func TestProxyPoolReusesFirstTerminatedSlot(t *testing.T) {
	pool := NewProxyPool[component](0)
	a := pool.Add(component{"a"})
	b := pool.Add(component{"b"})
	c := pool.Add(component{"c"})
	require.Equal(t, 3, pool.Len())

	b.Remove()
	assert.Equal(t, Terminated, b.State())
	assert.Equal(t, 3, pool.Len())

	d := pool.Add(component{"d"})
	assert.Equal(t, 1, d.Index())
	assert.Equal(t, 3, pool.Len())
	assert.Equal(t, "d", d.Get().name)

	// Unaffected handles still resolve to their own components.
	assert.Equal(t, "a", a.Get().name)
	assert.Equal(t, "c", c.Get().name)

	a.Remove()
	c.Remove()
	e := pool.Add(component{"e"})
	assert.Equal(t, 0, e.Index())
}

func TestProxyPtrSurvivesGrowth(t *testing.T) {
	pool := NewProxyPool[component](1)
	first := pool.Add(component{"first"})
	for i := 0; i < 1000; i++ {
		pool.Add(component{"filler"})
	}
	assert.Equal(t, "first", first.Get().name)

	first.Get().name = "renamed"
	assert.Equal(t, "renamed", pool.At(0).Get().name)
}

func TestProxyPoolForEachSkipsTerminated(t *testing.T) {
	pool := NewProxyPool[component](4)
	pool.Add(component{"a"})
	b := pool.Add(component{"b"})
	c := pool.Add(component{"c"})
	pool.Add(component{"d"})

	b.Remove()
	c.SetState(Passive)

	var visited []string
	pool.ForEach(func(_ ProxyPtr[component], v *component) {
		visited = append(visited, v.name)
	})
	assert.Equal(t, []string{"a", "c", "d"}, visited)

	visited = visited[:0]
	pool.ForEachActive(func(_ ProxyPtr[component], v *component) {
		visited = append(visited, v.name)
	})
	assert.Equal(t, []string{"a", "d"}, visited)

	assert.Equal(t, 2, pool.Count(Active))
	assert.Equal(t, 1, pool.Count(Passive))
	assert.Equal(t, 1, pool.Count(Terminated))
}

func TestProxyPoolClear(t *testing.T) {
	pool := NewProxyPool[component](2)
	pool.Add(component{"a"})
	pool.Add(component{"b"})
	pool.Clear()
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, 2, pool.Count(Terminated))
}

func TestNullProxyPtr(t *testing.T) {
	var ptr ProxyPtr[component]
	assert.False(t, ptr.Valid())
	assert.Panics(t, func() { ptr.Get() })
	assert.Equal(t, "terminated", Terminated.String())
}
