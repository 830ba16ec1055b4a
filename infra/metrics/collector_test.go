package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tripcost/core/events"
	coremetrics "github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

type phaseSink struct {
	coremetrics.NopSink
	mu     sync.Mutex
	phases []string
}

func (p *phaseSink) RecordPhase(_ string, phase string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phases = append(p.phases, phase)
	return nil
}

func (p *phaseSink) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.phases...)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.StateEvent]()
	sink := &phaseSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := StartEventCollector(ctx, bus, sink)
	require.Equal(t, 1, bus.Subscribers())

	for _, ph := range []string{"submitting", "succeeded", "succeeded", "idle"} {
		bus.Publish(events.StateEvent{SessionID: "s1", Phase: ph})
	}
	require.Eventually(t, func() bool { return len(sink.recorded()) == 3 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"submitting", "succeeded", "idle"}, sink.recorded())

	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_NoRecorder(t *testing.T) {
	bus := eventbus.NewTyped[events.StateEvent]()
	done := StartEventCollector(context.Background(), bus, predictionOnlySink{})
	<-done
	assert.Equal(t, 0, bus.Subscribers())
}

type predictionOnlySink struct{}

func (predictionOnlySink) RecordPrediction(coremetrics.PredictionEvent) error { return nil }
