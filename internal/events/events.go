// Package events is an explicit dispatch table: named lifecycle events mapped to
// ordered handler lists. Components receive the dispatcher they publish to.
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	UserRoleMapped        = "user.role_mapped"
	OnboardingCompleted   = "onboarding.completed"
	PrimaryContextChanged = "user.primary_context_changed"
	ImportCompleted       = "import.completed"
	StructureChanged      = "structure.changed"
	StructureDeleted      = "structure.deleted"
)

type Event struct {
	Name         string
	UserID       uint64 // actor; zero for system actions
	ResourceType string
	ResourceID   uint64
	Data         map[string]any
	IP           string
	UserAgent    string
	At           time.Time
}

// Source describes who triggered an event.
type Source struct {
	UserID    uint64
	IP        string
	UserAgent string
}

func (s Source) Event(name, resourceType string, resourceID uint64, data map[string]any) Event {
	return Event{
		Name:         name,
		UserID:       s.UserID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Data:         data,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
	}
}

type Handler func(ctx context.Context, ev Event) error

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *zap.Logger
}

func New(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{handlers: map[string][]Handler{}, log: log}
}

// On appends h to the handlers of the named event.
func (d *Dispatcher) On(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Emit runs the handlers of ev.Name in registration order. Handler errors are
// logged and do not stop the remaining handlers.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	d.mu.RLock()
	hs := append([]Handler(nil), d.handlers[ev.Name]...)
	d.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			d.log.Warn("event handler failed", zap.String("event", ev.Name), zap.Error(err))
		}
	}
}

// Close drops every registration.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.handlers = map[string][]Handler{}
	d.mu.Unlock()
}
