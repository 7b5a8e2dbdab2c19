// Package guard blocks closing a split session while an irreversible or
// lossy operation is in flight.
package guard

import (
	"log/slog"
	"sync"
)

// Event is delivered to handlers when something tries to close the session.
type Event struct {
	prevented bool
	message   string
}

// Prevent asks for the close to be confirmed with message.
func (e *Event) Prevent(message string) {
	e.prevented = true
	e.message = message
}

// Handler reacts to a close attempt.
type Handler func(*Event)

// Dispatcher delivers close attempts to subscribed handlers.
type Dispatcher interface {
	Subscribe(h Handler) (cancel func())
}

// Prompter is the confirmation prompt. It returns true when the user
// chooses to leave anyway.
type Prompter func(message string) bool

// Window is the close-attempt source of one session.
type Window struct {
	mu       sync.Mutex
	next     int
	handlers map[int]Handler
}

// NewWindow returns a window with no listeners.
func NewWindow() *Window {
	return &Window{handlers: make(map[int]Handler)}
}

// Subscribe registers h until the returned cancel func is called.
func (w *Window) Subscribe(h Handler) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.next
	w.next++
	w.handlers[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.handlers, id)
		})
	}
}

// Listeners is the number of registered handlers.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.handlers)
}

// RequestClose runs the handlers. If any of them prevents the close, confirm
// is called with the message and decides; a nil confirm keeps the session
// open. It returns whether the close goes ahead and the prompt message, if any.
func (w *Window) RequestClose(confirm Prompter) (closed bool, message string) {
	w.mu.Lock()
	handlers := make([]Handler, 0, len(w.handlers))
	for _, h := range w.handlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()

	ev := &Event{}
	for _, h := range handlers {
		h(ev)
	}
	if !ev.prevented {
		return true, ""
	}
	if confirm == nil {
		return false, ev.message
	}
	return confirm(ev.message), ev.message
}

// Guard prevents closes with a fixed message while enabled.
type Guard struct {
	mu      sync.Mutex
	message string
	enabled bool
	cancel  func()
}

// New returns a disabled, detached guard.
func New(message string) *Guard {
	return &Guard{message: message}
}

// Attach subscribes the guard to d, replacing any previous subscription.
func (g *Guard) Attach(d Dispatcher) {
	cancel := d.Subscribe(g.handle)
	g.mu.Lock()
	prev := g.cancel
	g.cancel = cancel
	g.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// SetEnabled switches the guard on or off.
func (g *Guard) SetEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enabled != enabled {
		slog.Debug("Unload guard toggled.", "enabled", enabled)
	}
	g.enabled = enabled
}

// Enabled reports the current setting.
func (g *Guard) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Message is the prompt text.
func (g *Guard) Message() string { return g.message }

// Close deregisters the guard. It is safe to call more than once.
func (g *Guard) Close() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (g *Guard) handle(ev *Event) {
	if g.Enabled() {
		ev.Prevent(g.message)
	}
}
