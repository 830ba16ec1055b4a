package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tripcost/config"
	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/factory"
	"github.com/kilianp07/tripcost/core/model"
	"github.com/kilianp07/tripcost/core/prediction"
	"github.com/kilianp07/tripcost/core/suggest"
)

type failingSource struct{}

func (failingSource) Suggestions(context.Context) ([]string, error) {
	return nil, errors.New("redis down")
}

func TestSessionSubmitPublishesEvents(t *testing.T) {
	cfg := config.Default()
	cfg.Controller.SuccessWindowMS = 50
	p := &prediction.MockPredictor{Result: model.PredictionResult{AccommodationCost: 500, TransportationCost: 300}}
	s, err := New(cfg, WithPredictor(p))
	require.NoError(t, err)
	sub := s.Bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	done, ok := s.Controller.Submit(ctx)
	require.True(t, ok)
	<-done

	var phases []string
	timeout := time.After(time.Second)
	for len(phases) < 3 {
		select {
		case ev := <-sub:
			phases = append(phases, ev.Phase)
		case <-timeout:
			t.Fatalf("got only %v", phases)
		}
	}
	assert.Equal(t, []string{"submitting", "succeeded", "succeeded"}, phases)
	assert.Equal(t, 800.0, s.Controller.TotalCost())
	require.NoError(t, s.Close())
}

func TestSessionFromConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accommodation_cost": 100, "transportation_cost": 50}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Predictor = factory.ModuleConfig{Type: "http", Conf: map[string]any{"url": srv.URL}}
	cfg.Suggestions = factory.ModuleConfig{Type: "static", Conf: map[string]any{"items": []any{"A", "B", "C", "D", "E", "F"}}}
	s, err := New(cfg, WithInitialRequest(model.TripRequest{
		Destination: "Lima, Peru", Duration: "5", Age: "40", Gender: "Female",
		Nationality: "Peruvian", Accommodation: "Hotel", Transportation: "Bus",
	}))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, s.Suggestions(context.Background()))
	done, ok := s.Controller.Submit(context.Background())
	require.True(t, ok)
	<-done
	st := s.Controller.State()
	require.Equal(t, controller.PhaseSucceeded, st.Phase)
	assert.Equal(t, 30.0, s.Controller.AccommodationPerDay())
}

func TestSessionSuggestionsFallback(t *testing.T) {
	s, err := New(config.Default(), WithPredictor(&prediction.MockPredictor{}), WithSuggestions(failingSource{}))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, suggest.Top(suggest.DefaultDestinations), s.Suggestions(context.Background()))
}

func TestSessionErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Predictor = factory.ModuleConfig{Type: "oracle"}
	_, err := New(cfg)
	assert.ErrorContains(t, err, "predictor")

	cfg = config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg, WithPredictor(&prediction.MockPredictor{}))
	assert.ErrorContains(t, err, "metrics")

	cfg = config.Default()
	cfg.Log.Level = "chatty"
	_, err = New(cfg)
	assert.Error(t, err)
}

type countingMonitor struct {
	mu   sync.Mutex
	errs []error
}

func (m *countingMonitor) CaptureException(err error, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

func (m *countingMonitor) Flush(time.Duration) bool { return true }

func (m *countingMonitor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errs)
}

func TestSessionReportsFailures(t *testing.T) {
	mon := &countingMonitor{}
	p := &prediction.MockPredictor{Err: &prediction.RequestError{StatusCode: 400, Message: "Unknown city"}}
	s, err := New(config.Default(), WithPredictor(p), WithMonitor(mon))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	done, ok := s.Controller.Submit(ctx)
	require.True(t, ok)
	<-done
	require.Eventually(t, func() bool { return mon.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorContains(t, mon.errs[0], "Unknown city")
	require.NoError(t, s.Close())
}

type closingSource struct {
	suggest.Static
	closed *atomic.Int32
}

func (c closingSource) Close() error {
	c.closed.Add(1)
	return nil
}

func TestSessionNewReleasesOnError(t *testing.T) {
	var closed atomic.Int32
	require.NoError(t, suggest.RegisterSource("closing", func(map[string]any) (suggest.Source, error) {
		return closingSource{closed: &closed}, nil
	}))
	require.NoError(t, prediction.RegisterPredictor("nil", func(map[string]any) (prediction.Predictor, error) {
		return nil, nil
	}))

	cfg := config.Default()
	cfg.Suggestions = factory.ModuleConfig{Type: "closing"}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err := New(cfg, WithPredictor(&prediction.MockPredictor{}))
	require.ErrorContains(t, err, "metrics")
	assert.Equal(t, int32(1), closed.Load())

	cfg = config.Default()
	cfg.Suggestions = factory.ModuleConfig{Type: "closing"}
	cfg.Monitoring.DSN = "not a dsn"
	_, err = New(cfg, WithPredictor(&prediction.MockPredictor{}))
	require.ErrorContains(t, err, "monitoring")
	assert.Equal(t, int32(2), closed.Load())

	cfg = config.Default()
	cfg.Suggestions = factory.ModuleConfig{Type: "closing"}
	cfg.Predictor = factory.ModuleConfig{Type: "nil"}
	_, err = New(cfg)
	require.ErrorContains(t, err, "nil predictor")
	assert.Equal(t, int32(3), closed.Load())
}
