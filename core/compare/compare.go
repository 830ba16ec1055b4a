// Package compare quotes several destinations with the same trip parameters
// and summarizes the totals.
package compare

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/model"
)

// Quote is the outcome of one destination's submission.
type Quote struct {
	Destination string                  `json:"destination"`
	Result      *model.PredictionResult `json:"result,omitempty"`
	Message     string                  `json:"message,omitempty"`
}

// Summary aggregates the totals of successful quotes.
type Summary struct {
	Quoted   int     `json:"quoted"`
	Failed   int     `json:"failed"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Cheapest string  `json:"cheapest,omitempty"`
	Priciest string  `json:"priciest,omitempty"`
}

// Run submits the controller's form once per destination, one request at a
// time, and collects each outcome. Other fields keep their current values.
func Run(ctx context.Context, c *controller.Controller, destinations []string) ([]Quote, error) {
	quotes := make([]Quote, 0, len(destinations))
	for _, dest := range destinations {
		if err := ctx.Err(); err != nil {
			return quotes, err
		}
		c.Form().ApplySuggestion(dest)
		done, ok := c.Submit(ctx)
		if !ok {
			return quotes, fmt.Errorf("compare %q: form invalid or request in flight", dest)
		}
		select {
		case <-done:
		case <-ctx.Done():
			return quotes, ctx.Err()
		}
		st := c.State()
		q := Quote{Destination: dest}
		switch st.Phase {
		case controller.PhaseSucceeded:
			q.Result = st.Result
		default:
			q.Message = st.Message
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// Summarize computes statistics over the successful quotes. With a single
// success StdDev is 0.
func Summarize(quotes []Quote) Summary {
	var s Summary
	totals := make([]float64, 0, len(quotes))
	names := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Result == nil {
			s.Failed++
			continue
		}
		totals = append(totals, q.Result.Total())
		names = append(names, q.Destination)
	}
	s.Quoted = len(totals)
	if s.Quoted == 0 {
		return s
	}
	s.Mean = stat.Mean(totals, nil)
	if s.Quoted > 1 {
		s.StdDev = stat.StdDev(totals, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	minIdx, maxIdx := floats.MinIdx(totals), floats.MaxIdx(totals)
	s.Min, s.Max = totals[minIdx], totals[maxIdx]
	s.Cheapest, s.Priciest = names[minIdx], names[maxIdx]
	return s
}
