package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSubmitRejected forwards to sinks that support it.
func (m *MultiSink) RecordSubmitRejected(reason string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SubmitRejectRecorder); ok {
			if err := rec.RecordSubmitRejected(reason); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPhase forwards to sinks that support it.
func (m *MultiSink) RecordPhase(sessionID, phase string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PhaseRecorder); ok {
			if err := rec.RecordPhase(sessionID, phase); err != nil {
				return err
			}
		}
	}
	return nil
}
