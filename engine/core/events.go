package core

import (
	"sync"

	"github.com/spaghettifunk/lumen/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Resized/resolution changed from the OS. Data: *ResizeEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	// Changes the render mode of the active cameras. Data: the render mode.
	EVENT_CODE_SET_RENDER_MODE EventCode = 0x09

	// An asset file was created, changed or removed. Data: *AssetEvent
	EVENT_CODE_ASSET_CHANGED EventCode = 0x0A

	MAX_EVENT_CODE EventCode = 0xFF
)

// Size of the deferred event queue drained once per frame.
const EVENT_QUEUE_SIZE = 1024

type EventContext struct {
	Type   EventCode
	Sender interface{}
	Data   interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

type AssetEvent struct {
	Path    string
	Removed bool
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

/**
 * @brief EventSystem dispatches events to registered listeners, either
 * immediately with Fire or at the next Dispatch with Post. Post may be
 * called from any goroutine; everything else belongs to the frame thread.
 */
type EventSystem struct {
	registered map[EventCode][]registeredEvent

	mu    sync.Mutex
	queue *containers.RingQueue[EventContext]
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[EventCode][]registeredEvent),
		queue:      containers.NewRingQueue[EventContext](EVENT_QUEUE_SIZE),
	}
}

/**
 * Register to listen for when events are sent with the provided code. A
 * listener can only be registered once per code; duplicates return false.
 */
func (es *EventSystem) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	for _, e := range es.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes listener from code. Returns false if it was not registered.
func (es *EventSystem) Unregister(code EventCode, listener interface{}) bool {
	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (es *EventSystem) Fire(context EventContext) bool {
	for _, e := range es.registered[context.Type] {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Post queues an event for the next Dispatch.
func (es *EventSystem) Post(context EventContext) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.queue.Enqueue(context)
}

// Dispatch fires every queued event in posting order and returns how many ran.
func (es *EventSystem) Dispatch() int {
	n := 0
	for {
		es.mu.Lock()
		context, err := es.queue.Dequeue()
		es.mu.Unlock()
		if err != nil {
			return n
		}
		es.Fire(context)
		n++
	}
}

func (es *EventSystem) Shutdown() {
	es.registered = make(map[EventCode][]registeredEvent)
}
