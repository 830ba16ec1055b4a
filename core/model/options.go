package model

// Gender is the traveler gender offered by the form.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the selectable genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// AccommodationType is the kind of lodging for the trip.
type AccommodationType string

const (
	AccommodationHotel  AccommodationType = "Hotel"
	AccommodationAirbnb AccommodationType = "Airbnb"
	AccommodationHostel AccommodationType = "Hostel"
	AccommodationResort AccommodationType = "Resort"
)

// AccommodationTypes lists the selectable accommodation types in display order.
var AccommodationTypes = []AccommodationType{
	AccommodationHotel,
	AccommodationAirbnb,
	AccommodationHostel,
	AccommodationResort,
}

// TransportationType is the main mode of travel.
type TransportationType string

const (
	TransportationFlight TransportationType = "Flight"
	TransportationTrain  TransportationType = "Train"
	TransportationBus    TransportationType = "Bus"
	TransportationCar    TransportationType = "Car"
)

// TransportationTypes lists the selectable transportation types in display order.
var TransportationTypes = []TransportationType{
	TransportationFlight,
	TransportationTrain,
	TransportationBus,
	TransportationCar,
}

// Options returns the choices offered for a select field, or nil for free
// text fields.
func Options(f Field) []string {
	switch f {
	case FieldGender:
		return toStrings(Genders)
	case FieldAccommodation:
		return toStrings(AccommodationTypes)
	case FieldTransportation:
		return toStrings(TransportationTypes)
	default:
		return nil
	}
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
