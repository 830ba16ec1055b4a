// Package plugins links the built-in module implementations so their
// factories are registered, and reports what is available.
package plugins

import (
	"github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/core/prediction"
	"github.com/kilianp07/tripcost/core/suggest"

	_ "github.com/kilianp07/tripcost/infra/metrics"
	_ "github.com/kilianp07/tripcost/infra/predictor"
	_ "github.com/kilianp07/tripcost/infra/suggest"
)

// Kinds of pluggable modules.
const (
	KindPredictor   = "predictor"
	KindMetricsSink = "metrics"
	KindSuggestions = "suggestions"
)

// Available returns the registered type names per module kind.
func Available() map[string][]string {
	return map[string][]string{
		KindPredictor:   prediction.PredictorTypes(),
		KindMetricsSink: metrics.SinkTypes(),
		KindSuggestions: suggest.SourceTypes(),
	}
}
