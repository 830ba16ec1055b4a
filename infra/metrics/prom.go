package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tripcost/core/metrics"
)

// PromSink records prediction attempts in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	lastTotal   prometheus.Gauge
	rejected    *prometheus.CounterVec
	phases      *prometheus.CounterVec
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripcost_predictions_total",
		Help: "Total number of completed prediction requests",
	}, []string{"outcome", "accommodation", "transportation"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripcost_prediction_latency_seconds",
		Help:    "Time between submit and response",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	lastTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tripcost_last_total_cost",
		Help: "Total cost of the most recent successful prediction",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripcost_submit_rejected_total",
		Help: "Submit calls ignored because the form was invalid or a request was in flight",
	}, []string{"reason"})
	phases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripcost_phase_transitions_total",
		Help: "Controller lifecycle transitions",
	}, []string{"phase"})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if lastTotal, err = register(reg, lastTotal); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	if phases, err = register(reg, phases); err != nil {
		return nil, err
	}
	return &PromSink{
		predictions: predictions,
		latency:     latency,
		lastTotal:   lastTotal,
		rejected:    rejected,
		phases:      phases,
	}, nil
}

// register adds c to reg, returning the collector already registered under
// the same descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return c, err
		}
		exist, ok := are.ExistingCollector.(C)
		if !ok {
			return c, err
		}
		return exist, nil
	}
	return c, nil
}

// RecordPrediction counts the attempt and observes its latency.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Outcome, ev.Accommodation, ev.Transportation).Inc()
	s.latency.WithLabelValues(ev.Outcome).Observe(ev.Latency.Seconds())
	if ev.Outcome == coremetrics.OutcomeSuccess {
		s.lastTotal.Set(ev.Result.Total())
	}
	return nil
}

// RecordSubmitRejected counts an ignored submit.
func (s *PromSink) RecordSubmitRejected(reason string) error {
	s.rejected.WithLabelValues(reason).Inc()
	return nil
}

// RecordPhase counts a lifecycle transition. The session id is not used as
// a label to keep cardinality bounded.
func (s *PromSink) RecordPhase(_ string, phase string) error {
	s.phases.WithLabelValues(phase).Inc()
	return nil
}
