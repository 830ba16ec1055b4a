package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kilianp07/tripcost/core/model"
)

// ErrUnknownField is returned by SetField for names outside model.Fields.
var ErrUnknownField = errors.New("unknown field")

// Model owns the TripRequest being edited.
type Model struct {
	mu        sync.RWMutex
	req       model.TripRequest
	listeners []func(model.Field)
}

// New returns a Model seeded with req.
func New(req model.TripRequest) *Model {
	return &Model{req: req}
}

// OnEdit registers fn to be called after every accepted edit.
func (m *Model) OnEdit(fn func(model.Field)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// SetField stores raw for the named field without parsing it.
func (m *Model) SetField(name model.Field, raw string) error {
	m.mu.Lock()
	ok := m.req.Set(name, raw)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	m.notify(name)
	return nil
}

// ApplySuggestion sets the destination to a suggested value.
func (m *Model) ApplySuggestion(destination string) {
	m.mu.Lock()
	m.req.Destination = destination
	m.mu.Unlock()
	m.notify(model.FieldDestination)
}

// notify runs listeners without holding m.mu so they may read the form.
func (m *Model) notify(f model.Field) {
	m.mu.RLock()
	ls := make([]func(model.Field), len(m.listeners))
	copy(ls, m.listeners)
	m.mu.RUnlock()
	for _, fn := range ls {
		fn(f)
	}
}

// Request returns a copy of the current values.
func (m *Model) Request() model.TripRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.req
}

// IsValid reports whether the current values may be submitted.
func (m *Model) IsValid() bool {
	return len(m.InvalidFields()) == 0
}

// InvalidFields returns the fields that currently block submission, in form
// order.
func (m *Model) InvalidFields() []model.Field {
	return Check(m.Request())
}

// Check evaluates the submission invariant against req.
func Check(req model.TripRequest) []model.Field {
	var bad []model.Field
	if strings.TrimSpace(req.Destination) == "" {
		bad = append(bad, model.FieldDestination)
	}
	if req.DurationDays() <= 0 {
		bad = append(bad, model.FieldDuration)
	}
	if req.AgeYears() <= 0 {
		bad = append(bad, model.FieldAge)
	}
	return bad
}
