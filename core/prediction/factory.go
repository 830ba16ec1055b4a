package prediction

import (
	"github.com/kilianp07/tripcost/core/factory"
	"github.com/kilianp07/tripcost/core/model"
)

var predictorRegistry = factory.NewRegistry[Predictor]("predictor")

func init() {
	_ = RegisterPredictor("mock", func(conf map[string]any) (Predictor, error) {
		var c struct {
			AccommodationCost  float64 `json:"accommodation_cost"`
			TransportationCost float64 `json:"transportation_cost"`
			Error              string  `json:"error"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		m := &MockPredictor{Result: model.PredictionResult{
			AccommodationCost:  c.AccommodationCost,
			TransportationCost: c.TransportationCost,
		}}
		if c.Error != "" {
			m.Err = &RequestError{StatusCode: 400, Message: c.Error}
		}
		return m, nil
	})
}

// RegisterPredictor adds a predictor factory identified by name.
func RegisterPredictor(name string, f factory.Factory[Predictor]) error {
	return predictorRegistry.Register(name, f)
}

// NewPredictor creates the Predictor described by cfg.
func NewPredictor(cfg factory.ModuleConfig) (Predictor, error) {
	return predictorRegistry.Create(cfg)
}

// PredictorTypes lists the registered predictor types.
func PredictorTypes() []string { return predictorRegistry.Types() }
