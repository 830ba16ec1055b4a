package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/kilianp07/tripcost/app/plugins"
	"github.com/kilianp07/tripcost/config"
	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/events"
	coremetrics "github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/core/model"
	coremon "github.com/kilianp07/tripcost/core/monitoring"
	"github.com/kilianp07/tripcost/core/prediction"
	"github.com/kilianp07/tripcost/core/suggest"
	"github.com/kilianp07/tripcost/infra/logger"
	"github.com/kilianp07/tripcost/infra/metrics"
	"github.com/kilianp07/tripcost/infra/monitoring"
	"github.com/kilianp07/tripcost/infra/mqtt"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

// Session wires one controller to the configured predictor, suggestion
// source, metrics sinks and event publisher.
type Session struct {
	Controller *controller.Controller
	Bus        *eventbus.TypedBus[events.StateEvent]

	cfg         *config.Config
	suggestions suggest.Source
	sink        coremetrics.MetricsSink
	publisher   *mqtt.StatePublisher
	monitor     coremon.Monitor
	log         logger.Logger

	wg      sync.WaitGroup
	closers []func() error
}

// Option customizes a Session.
type Option func(*options)

type options struct {
	predictor   prediction.Predictor
	suggestions suggest.Source
	sink        coremetrics.MetricsSink
	monitor     coremon.Monitor
	initial     *model.TripRequest
}

// WithPredictor replaces the configured predictor.
func WithPredictor(p prediction.Predictor) Option {
	return func(o *options) { o.predictor = p }
}

// WithSuggestions replaces the configured suggestion source.
func WithSuggestions(s suggest.Source) Option {
	return func(o *options) { o.suggestions = s }
}

// WithMetricsSink replaces the configured metrics sinks.
func WithMetricsSink(s coremetrics.MetricsSink) Option {
	return func(o *options) { o.sink = s }
}

// WithMonitor replaces the configured error monitor.
func WithMonitor(m coremon.Monitor) Option {
	return func(o *options) { o.monitor = m }
}

// WithInitialRequest seeds the form instead of the sample trip.
func WithInitialRequest(req model.TripRequest) Option {
	return func(o *options) { o.initial = &req }
}

// New creates a Session from the configuration. Nothing runs in the
// background until Start is called.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{cfg: cfg, log: logger.New("session")}

	p := o.predictor
	if p == nil {
		var err error
		if p, err = prediction.NewPredictor(cfg.Predictor); err != nil {
			return nil, fmt.Errorf("predictor: %w", err)
		}
	}

	s.suggestions = o.suggestions
	if s.suggestions == nil {
		src, err := suggest.NewSource(cfg.Suggestions)
		if err != nil {
			return nil, fmt.Errorf("suggestions: %w", err)
		}
		s.suggestions = src
		s.addCloser(src)
	}

	s.sink = o.sink
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, s.abort(fmt.Errorf("metrics: %w", err))
		}
		s.sink = sink
		s.addCloser(sink)
	}

	s.monitor = o.monitor
	if s.monitor == nil {
		m, err := monitoring.NewSentryMonitor(cfg.Monitoring)
		if err != nil {
			return nil, s.abort(fmt.Errorf("monitoring: %w", err))
		}
		s.monitor = m
	}

	s.Bus = eventbus.NewTyped[events.StateEvent]()
	if cfg.Events.Enabled {
		pub, err := mqtt.NewStatePublisher(cfg.Events)
		if err != nil {
			return nil, s.abort(fmt.Errorf("events: %w", err))
		}
		s.publisher = pub
	}

	copts := []controller.Option{
		controller.WithLogger(logger.New("controller")),
		controller.WithMetrics(s.sink),
		controller.WithEvents(s.Bus),
		controller.WithSuccessWindow(cfg.Controller.SuccessWindow()),
	}
	if o.initial != nil {
		copts = append(copts, controller.WithInitialRequest(*o.initial))
	}
	ctrl, err := controller.New(p, copts...)
	if err != nil {
		return nil, s.abort(err)
	}
	s.Controller = ctrl
	return s, nil
}

// abort releases whatever New acquired before failing with err.
func (s *Session) abort(err error) error {
	if s.Bus != nil {
		s.Bus.Close()
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	_ = s.closeAll()
	return err
}

// addCloser registers v for Close when it owns resources.
func (s *Session) addCloser(v any) {
	switch c := v.(type) {
	case interface{ Close() error }:
		s.closers = append(s.closers, c.Close)
	case interface{ Close() }:
		s.closers = append(s.closers, func() error { c.Close(); return nil })
	}
}

// Start launches the background forwarders: phase metrics, failure
// reporting, the MQTT publisher and, when a prometheus sink is configured, the /metrics server.
// They stop when ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) {
	collected := metrics.StartEventCollector(ctx, s.Bus, s.sink)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-collected
	}()
	reported := monitoring.Watch(ctx, s.Bus, s.monitor)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-reported
	}()
	if s.publisher != nil {
		forwarded := s.publisher.Run(ctx, s.Bus)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			<-forwarded
		}()
	}
	if s.cfg.Metrics.HasSink("prometheus") {
		addr := s.cfg.Metrics.PrometheusAddr
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("session %s started", s.Controller.SessionID())
}

// Suggestions returns the destinations to display. A failing source falls
// back to the built-in list.
func (s *Session) Suggestions(ctx context.Context) []string {
	list, err := s.suggestions.Suggestions(ctx)
	if err != nil {
		s.log.Warnf("suggestions unavailable, using defaults: %v", err)
		list = suggest.DefaultDestinations
	}
	return suggest.Top(list)
}

// Close stops the forwarders and releases held resources.
func (s *Session) Close() error {
	s.Bus.Close()
	s.wg.Wait()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.monitor.Flush(2 * time.Second)
	return s.closeAll()
}

func (s *Session) closeAll() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
