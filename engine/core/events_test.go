package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSystemFireStopsWhenHandled(t *testing.T) {
	es := NewEventSystem()
	var calls []string

	first, second := "first", "second"
	require.True(t, es.Register(EVENT_CODE_RESIZED, &first, func(EventContext) bool {
		calls = append(calls, first)
		return true
	}))
	require.True(t, es.Register(EVENT_CODE_RESIZED, &second, func(EventContext) bool {
		calls = append(calls, second)
		return false
	}))
	assert.False(t, es.Register(EVENT_CODE_RESIZED, &first, func(EventContext) bool { return false }))

	assert.True(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"first"}, calls)

	assert.True(t, es.Unregister(EVENT_CODE_RESIZED, &first))
	assert.False(t, es.Unregister(EVENT_CODE_RESIZED, &first))
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventSystemPostDispatchesInOrder(t *testing.T) {
	es := NewEventSystem()
	var sizes []uint32
	es.Register(EVENT_CODE_RESIZED, es, func(ctx EventContext) bool {
		sizes = append(sizes, ctx.Data.(*ResizeEvent).Width)
		return true
	})

	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_RESIZED, Data: &ResizeEvent{Width: 1}}))
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_RESIZED, Data: &ResizeEvent{Width: 2}}))
	assert.Empty(t, sizes)

	assert.Equal(t, 2, es.Dispatch())
	assert.Equal(t, []uint32{1, 2}, sizes)
	assert.Equal(t, 0, es.Dispatch())
}

func TestInputStateFiresOnChange(t *testing.T) {
	es := NewEventSystem()
	input := NewInputState(es)
	pressed := 0
	es.Register(EVENT_CODE_KEY_PRESSED, input, func(ctx EventContext) bool {
		pressed++
		assert.Equal(t, KEY_ESCAPE, ctx.Data.(*KeyEvent).KeyCode)
		return true
	})

	input.ProcessKey(KEY_ESCAPE, true)
	input.ProcessKey(KEY_ESCAPE, true)
	assert.Equal(t, 1, pressed)
	assert.True(t, input.IsKeyDown(KEY_ESCAPE))

	input.Update()
	input.ProcessKey(KEY_ESCAPE, false)
	assert.True(t, input.KeyReleased(KEY_ESCAPE))
	input.Update()
	assert.False(t, input.KeyReleased(KEY_ESCAPE))
}
