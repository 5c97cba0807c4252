package lottie

// EventKind is the closed set of playback notifications.
type EventKind int

// Event kind constants.
const (
	// EventEnterFrame fires on every cursor advance.
	EventEnterFrame EventKind = iota

	// EventLoopComplete fires when a looping player wraps around the
	// end of its active range.
	EventLoopComplete

	// EventComplete fires once when a non-looping player reaches the
	// end of its active range and pauses.
	EventComplete

	// EventDestroy fires when the player is destroyed.
	EventDestroy

	// EventError fires when a frame fails to render; playback
	// continues on the next tick.
	EventError
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventEnterFrame:
		return "enterFrame"
	case EventLoopComplete:
		return "loopComplete"
	case EventComplete:
		return "complete"
	case EventDestroy:
		return "destroy"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the payload delivered to listeners.
type Event struct {
	Kind EventKind

	// CurrentTime is the cursor position in frames, relative to the
	// active range start.
	CurrentTime float64

	// TotalTime is the active range length in frames.
	TotalTime float64

	// Direction is +1 for forward playback, -1 for reverse.
	Direction int

	// Err carries the render failure for EventError, nil otherwise.
	Err error
}

// listenerRegistry dispatches typed events to per-kind listener
// lists. It is not safe for concurrent use on its own; the Player
// serializes access.
type listenerRegistry struct {
	nextID    int
	listeners map[EventKind][]registeredListener
}

type registeredListener struct {
	id int
	fn func(Event)
}

func (lr *listenerRegistry) add(kind EventKind, fn func(Event)) int {
	if lr.listeners == nil {
		lr.listeners = make(map[EventKind][]registeredListener)
	}
	lr.nextID++
	lr.listeners[kind] = append(lr.listeners[kind], registeredListener{id: lr.nextID, fn: fn})
	return lr.nextID
}

func (lr *listenerRegistry) remove(kind EventKind, id int) {
	ls := lr.listeners[kind]
	for i := range ls {
		if ls[i].id == id {
			lr.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// snapshot returns the current listener functions for a kind, so the
// caller can invoke them outside any lock.
func (lr *listenerRegistry) snapshot(kind EventKind) []func(Event) {
	ls := lr.listeners[kind]
	if len(ls) == 0 {
		return nil
	}
	out := make([]func(Event), len(ls))
	for i := range ls {
		out[i] = ls[i].fn
	}
	return out
}
