package watch

import (
	"github.com/penwyp/go-callflow/internal/core/model"
)

// Window is the bounded live-tail buffer. Messages stay in arrival order, ids
// are unique and the oldest arrivals are evicted first once capacity is exceeded.
// Window is not safe for concurrent use; the Controller guards it.
type Window struct {
	capacity int
	messages []model.Message
	ids      map[int64]struct{}
}

// NewWindow creates an empty window holding at most capacity messages
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		messages: make([]model.Message, 0, capacity),
		ids:      make(map[int64]struct{}, capacity),
	}
}

// Append adds the messages whose ids are not buffered yet, including ids that
// repeat within msgs, then evicts from the front down to capacity.
func (w *Window) Append(msgs []model.Message) (added, evicted int) {
	for _, msg := range msgs {
		if _, ok := w.ids[msg.ID]; ok {
			continue
		}
		w.ids[msg.ID] = struct{}{}
		w.messages = append(w.messages, msg)
		added++
	}

	if overflow := len(w.messages) - w.capacity; overflow > 0 {
		for _, msg := range w.messages[:overflow] {
			delete(w.ids, msg.ID)
		}
		kept := make([]model.Message, w.capacity)
		copy(kept, w.messages[overflow:])
		w.messages = kept
		evicted = overflow
	}
	return added, evicted
}

// Replace empties the window and appends msgs
func (w *Window) Replace(msgs []model.Message) (added, evicted int) {
	w.Reset()
	return w.Append(msgs)
}

// Reset empties the window
func (w *Window) Reset() {
	w.messages = make([]model.Message, 0, w.capacity)
	w.ids = make(map[int64]struct{}, w.capacity)
}

// Messages returns a copy of the buffer in arrival order
func (w *Window) Messages() []model.Message {
	out := make([]model.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Contains reports whether a message with id is buffered
func (w *Window) Contains(id int64) bool {
	_, ok := w.ids[id]
	return ok
}

// Len returns the number of buffered messages
func (w *Window) Len() int {
	return len(w.messages)
}

// Capacity returns the maximum number of buffered messages
func (w *Window) Capacity() int {
	return w.capacity
}
