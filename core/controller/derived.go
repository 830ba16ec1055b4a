package controller

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/tripcost/core/model"
)

// Result returns the result to render. It is only available while the
// controller is Succeeded.
func (c *Controller) Result() (model.PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseSucceeded || c.last == nil {
		return model.PredictionResult{}, false
	}
	return *c.last, true
}

// LastResult returns the most recent successful result regardless of the
// current phase. It must not be used for rendering.
func (c *Controller) LastResult() (model.PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return model.PredictionResult{}, false
	}
	return *c.last, true
}

// TotalCost returns accommodation plus transportation, or 0 without a result.
func (c *Controller) TotalCost() float64 {
	r, ok := c.Result()
	if !ok {
		return 0
	}
	return r.Total()
}

// AccommodationPerDay divides the accommodation cost by the trip duration.
func (c *Controller) AccommodationPerDay() float64 {
	r, days, ok := c.resultAndDays()
	if !ok {
		return 0
	}
	return r.AccommodationCost / float64(days)
}

// TransportationPerLeg splits the round-trip transportation cost in two.
func (c *Controller) TransportationPerLeg() float64 {
	r, ok := c.Result()
	if !ok {
		return 0
	}
	return r.TransportationCost / 2
}

// TotalPerDay divides the total cost by the trip duration.
func (c *Controller) TotalPerDay() float64 {
	r, days, ok := c.resultAndDays()
	if !ok {
		return 0
	}
	return r.Total() / float64(days)
}

// resultAndDays pairs the renderable result with the duration currently in
// the form. ok is false when either is unusable.
func (c *Controller) resultAndDays() (model.PredictionResult, int, bool) {
	r, ok := c.Result()
	if !ok {
		return r, 0, false
	}
	days := c.form.Request().DurationDays()
	if days <= 0 {
		return r, 0, false
	}
	return r, days, true
}

// Breakdown holds every figure displayed for a successful prediction.
type Breakdown struct {
	DurationDays         int     `json:"duration_days"`
	Accommodation        float64 `json:"accommodation"`
	Transportation       float64 `json:"transportation"`
	Total                float64 `json:"total"`
	AccommodationPerDay  float64 `json:"accommodation_per_day"`
	TransportationPerLeg float64 `json:"transportation_per_leg"`
	TotalPerDay          float64 `json:"total_per_day"`
}

// Breakdown returns the display figures, or false when there is no result to
// render.
func (c *Controller) Breakdown() (Breakdown, bool) {
	r, ok := c.Result()
	if !ok {
		return Breakdown{}, false
	}
	days := c.form.Request().DurationDays()
	b := Breakdown{
		DurationDays:         days,
		Accommodation:        r.AccommodationCost,
		Transportation:       r.TransportationCost,
		Total:                r.Total(),
		TransportationPerLeg: r.TransportationCost / 2,
	}
	if days > 0 {
		b.AccommodationPerDay = r.AccommodationCost / float64(days)
		b.TotalPerDay = b.Total / float64(days)
	}
	return b, true
}

// Line is one labelled figure of a Breakdown.
type Line struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

// Lines renders the breakdown as currency text in display order.
func (b Breakdown) Lines() []Line {
	return []Line{
		{"Accommodation", FormatCurrency(b.Accommodation), "for your entire stay"},
		{"Accommodation per day", FormatCurrency(b.AccommodationPerDay), "per night"},
		{"Transportation", FormatCurrency(b.Transportation), "round trip"},
		{"Transportation per leg", FormatCurrency(b.TransportationPerLeg), "each way"},
		{"Total", FormatCurrency(b.Total), "for your trip"},
		{"Total per day", FormatCurrency(b.TotalPerDay), "per day"},
	}
}

// FormatCurrency renders amount as whole US dollars, rounded to the nearest
// unit, with thousands separators. Non-finite amounts render as "$0".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}
	r := math.Round(amount)
	s := "$" + message.NewPrinter(language.AmericanEnglish).Sprintf("%.0f", math.Abs(r))
	if r < 0 {
		return "-" + s
	}
	return s
}
