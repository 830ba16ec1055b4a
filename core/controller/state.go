package controller

import "github.com/kilianp07/tripcost/core/model"

// Phase is the lifecycle phase of the controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller.
type State struct {
	Phase Phase
	// SubmissionID increases by one for every accepted Submit.
	SubmissionID uint64
	RequestID    string
	// Result is set only when Phase is PhaseSucceeded.
	Result *model.PredictionResult
	// Message is set only when Phase is PhaseFailed.
	Message     string
	ShowSuccess bool
}
