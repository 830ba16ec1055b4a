package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/tripcost/core/model"
)

// MockPredictor returns a configured result or error and records every
// request it receives.
type MockPredictor struct {
	Result model.PredictionResult
	Err    error
	// Gate, when set, blocks Predict until a value is received or the gate
	// is closed.
	Gate chan struct{}

	mu       sync.Mutex
	requests []model.TripRequest
}

// Predict records req and returns the configured outcome.
func (m *MockPredictor) Predict(ctx context.Context, req model.TripRequest) (model.PredictionResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate := m.Gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.PredictionResult{}, &RequestError{Err: ctx.Err()}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.PredictionResult{}, m.Err
	}
	return m.Result, nil
}

// Set replaces the configured outcome.
func (m *MockPredictor) Set(res model.PredictionResult, err error) {
	m.mu.Lock()
	m.Result = res
	m.Err = err
	m.mu.Unlock()
}

// Requests returns a copy of the requests received so far.
func (m *MockPredictor) Requests() []model.TripRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.TripRequest, len(m.requests))
	copy(cp, m.requests)
	return cp
}

// Calls returns the number of requests received.
func (m *MockPredictor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
