package events

import (
	"time"

	"github.com/kilianp07/tripcost/core/model"
)

// StateEvent is published on every lifecycle transition and whenever the
// success flag changes.
type StateEvent struct {
	SessionID    string                  `json:"session_id"`
	SubmissionID uint64                  `json:"submission_id"`
	RequestID    string                  `json:"request_id,omitempty"`
	Phase        string                  `json:"phase"`
	Message      string                  `json:"message,omitempty"`
	Result       *model.PredictionResult `json:"result,omitempty"`
	ShowSuccess  bool                    `json:"show_success"`
	Time         time.Time               `json:"time"`
}
