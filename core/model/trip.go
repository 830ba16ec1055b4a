package model

import (
	"strconv"
	"strings"
)

// Field identifies one trip parameter. The value doubles as the JSON key
// sent to the prediction service.
type Field string

const (
	FieldDestination    Field = "destination"
	FieldDuration       Field = "duration"
	FieldAge            Field = "age"
	FieldGender         Field = "gender"
	FieldNationality    Field = "nationality"
	FieldAccommodation  Field = "accommodation"
	FieldTransportation Field = "transportation"
)

// Fields lists every trip parameter in form order.
var Fields = []Field{
	FieldDestination,
	FieldDuration,
	FieldAge,
	FieldGender,
	FieldNationality,
	FieldAccommodation,
	FieldTransportation,
}

// Valid reports whether f names a known trip parameter.
func (f Field) Valid() bool {
	for _, k := range Fields {
		if k == f {
			return true
		}
	}
	return false
}

// Upper bounds shown as input hints. They are not enforced.
const (
	MaxDurationHint = 365
	MaxAgeHint      = 120
)

// TripRequest holds the trip parameters exactly as typed. Numeric fields
// stay strings; use DurationDays and AgeYears to read them.
type TripRequest struct {
	Destination    string `json:"destination"`
	Duration       string `json:"duration"`
	Age            string `json:"age"`
	Gender         string `json:"gender"`
	Nationality    string `json:"nationality"`
	Accommodation  string `json:"accommodation"`
	Transportation string `json:"transportation"`
}

// DefaultTripRequest returns the sample trip the form starts with.
func DefaultTripRequest() TripRequest {
	return TripRequest{
		Destination:    "Sydney, Australia",
		Duration:       "7",
		Age:            "33",
		Gender:         string(GenderMale),
		Nationality:    "Canadian",
		Accommodation:  string(AccommodationAirbnb),
		Transportation: string(TransportationTrain),
	}
}

// Get returns the raw value of f. Unknown fields yield "".
func (r TripRequest) Get(f Field) string {
	switch f {
	case FieldDestination:
		return r.Destination
	case FieldDuration:
		return r.Duration
	case FieldAge:
		return r.Age
	case FieldGender:
		return r.Gender
	case FieldNationality:
		return r.Nationality
	case FieldAccommodation:
		return r.Accommodation
	case FieldTransportation:
		return r.Transportation
	default:
		return ""
	}
}

// Set stores v for f and reports whether f is a known field.
func (r *TripRequest) Set(f Field, v string) bool {
	switch f {
	case FieldDestination:
		r.Destination = v
	case FieldDuration:
		r.Duration = v
	case FieldAge:
		r.Age = v
	case FieldGender:
		r.Gender = v
	case FieldNationality:
		r.Nationality = v
	case FieldAccommodation:
		r.Accommodation = v
	case FieldTransportation:
		r.Transportation = v
	default:
		return false
	}
	return true
}

// DurationDays parses Duration, returning 0 when it is empty or not an integer.
func (r TripRequest) DurationDays() int { return ParseCount(r.Duration) }

// AgeYears parses Age, returning 0 when it is empty or not an integer.
func (r TripRequest) AgeYears() int { return ParseCount(r.Age) }

// ParseCount parses a base-10 integer, ignoring surrounding whitespace.
// Empty or malformed input yields 0.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// PredictionResult is the cost pair returned by the prediction service.
type PredictionResult struct {
	AccommodationCost  float64 `json:"accommodation_cost"`
	TransportationCost float64 `json:"transportation_cost"`
}

// Total returns the sum of both costs.
func (p PredictionResult) Total() float64 {
	return p.AccommodationCost + p.TransportationCost
}
