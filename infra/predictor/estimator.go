package predictor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/tripcost/core/model"
)

// nightly lodging rates in USD.
var nightlyRate = map[string]float64{
	string(model.AccommodationHotel):  150,
	string(model.AccommodationAirbnb): 110,
	string(model.AccommodationHostel): 40,
	string(model.AccommodationResort): 260,
}

// round-trip base fares in USD.
var roundTripFare = map[string]float64{
	string(model.TransportationFlight): 900,
	string(model.TransportationTrain):  300,
	string(model.TransportationBus):    120,
	string(model.TransportationCar):    250,
}

// cost-of-living multipliers keyed by the city part of the destination.
var cityIndex = map[string]float64{
	"new york":  1.40,
	"london":    1.35,
	"paris":     1.25,
	"dubai":     1.20,
	"tokyo":     1.20,
	"sydney":    1.15,
	"rome":      1.05,
	"barcelona": 1.00,
	"bali":      0.65,
	"bangkok":   0.60,
}

// Estimate is the deterministic cost model served by the mock prediction
// service. Numeric inputs are parsed as decimals; costs are rounded to cents.
func Estimate(req model.TripRequest) (model.PredictionResult, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return model.PredictionResult{}, fmt.Errorf("destination is required")
	}
	days, err := parseDecimal("duration", req.Duration)
	if err != nil {
		return model.PredictionResult{}, err
	}
	if days <= 0 {
		return model.PredictionResult{}, fmt.Errorf("duration must be positive")
	}
	age, err := parseDecimal("age", req.Age)
	if err != nil {
		return model.PredictionResult{}, err
	}
	rate, ok := nightlyRate[req.Accommodation]
	if !ok {
		return model.PredictionResult{}, fmt.Errorf("unknown accommodation type %q", req.Accommodation)
	}
	fare, ok := roundTripFare[req.Transportation]
	if !ok {
		return model.PredictionResult{}, fmt.Errorf("unknown transportation type %q", req.Transportation)
	}
	idx := destinationIndex(req.Destination)

	lodging := rate * days * idx
	if age > 0 && age < 26 {
		lodging *= 0.9
	}
	travel := fare * idx
	if req.Transportation == string(model.TransportationCar) {
		travel += 35 * days
	}
	return model.PredictionResult{
		AccommodationCost:  round2(lodging),
		TransportationCost: round2(travel),
	}, nil
}

func destinationIndex(dest string) float64 {
	city := strings.ToLower(strings.TrimSpace(strings.SplitN(dest, ",", 2)[0]))
	if v, ok := cityIndex[city]; ok {
		return v
	}
	return 1
}

func parseDecimal(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("could not convert %s to float: %q", name, s)
	}
	return v, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
