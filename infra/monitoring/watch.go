package monitoring

import (
	"context"
	"errors"
	"strconv"

	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/events"
	coremon "github.com/kilianp07/tripcost/core/monitoring"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

// ErrPredictionFailed wraps the user-facing message of a failed submission.
var ErrPredictionFailed = errors.New("prediction failed")

// Watch reports every failed submission seen on bus to m until ctx is done
// or the bus is closed. The returned channel is closed on exit.
func Watch(ctx context.Context, bus *eventbus.TypedBus[events.StateEvent], m coremon.Monitor) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || m == nil {
		close(done)
		return done
	}
	if _, nop := m.(coremon.NopMonitor); nop {
		close(done)
		return done
	}
	ch := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Phase != controller.PhaseFailed.String() {
					continue
				}
				tags := map[string]string{
					"session_id":    ev.SessionID,
					"submission_id": strconv.FormatUint(ev.SubmissionID, 10),
				}
				if ev.RequestID != "" {
					tags["request_id"] = ev.RequestID
				}
				m.CaptureException(&FailureError{Message: ev.Message}, tags)
			}
		}
	}()
	return done
}

// FailureError is the error reported for a failed submission.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string { return ErrPredictionFailed.Error() + ": " + e.Message }

func (e *FailureError) Unwrap() error { return ErrPredictionFailed }
