package metrics

import (
	"context"

	"github.com/kilianp07/tripcost/core/events"
	coremetrics "github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

// StartEventCollector subscribes to the state bus and records lifecycle
// transitions on sinks that implement PhaseRecorder. It stops when the
// context is canceled or the bus is closed. The returned channel is closed
// once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.StateEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.PhaseRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		var last string
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				// success-flag expiry republishes the same phase
				if ev.Phase == last {
					continue
				}
				last = ev.Phase
				_ = rec.RecordPhase(ev.SessionID, ev.Phase)
			}
		}
	}()
	return done
}
