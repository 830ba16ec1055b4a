package metrics

import (
	"time"

	"github.com/kilianp07/tripcost/core/model"
)

// Outcome labels for PredictionEvent.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Reasons a submit call was ignored.
const (
	RejectInvalid  = "invalid"
	RejectInFlight = "in_flight"
)

// PredictionEvent describes one completed prediction request.
type PredictionEvent struct {
	SessionID      string
	RequestID      string
	Destination    string
	Accommodation  string
	Transportation string
	DurationDays   int
	Outcome        string
	// StatusCode is the HTTP status of a failed request, 0 when unknown.
	StatusCode int
	Result     model.PredictionResult
	Latency    time.Duration
	Time       time.Time
}

// MetricsSink records prediction attempts for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// SubmitRejectRecorder records submit calls that were ignored.
type SubmitRejectRecorder interface {
	RecordSubmitRejected(reason string) error
}

// PhaseRecorder records controller lifecycle transitions.
type PhaseRecorder interface {
	RecordPhase(sessionID, phase string) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
func (NopSink) RecordSubmitRejected(string) error      { return nil }
func (NopSink) RecordPhase(string, string) error       { return nil }
