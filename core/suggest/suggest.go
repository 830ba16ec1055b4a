// Package suggest provides the destination suggestions shown next to the
// destination input.
package suggest

import "context"

// DisplayLimit is the number of suggestions shown to the user.
const DisplayLimit = 5

// DefaultDestinations is the built-in suggestion list.
var DefaultDestinations = []string{
	"Paris, France",
	"Tokyo, Japan",
	"New York, USA",
	"London, UK",
	"Bali, Indonesia",
	"Rome, Italy",
	"Bangkok, Thailand",
	"Barcelona, Spain",
	"Dubai, UAE",
	"Sydney, Australia",
}

// Source yields an ordered list of destination suggestions.
type Source interface {
	Suggestions(ctx context.Context) ([]string, error)
}

// Static serves a fixed list.
type Static struct {
	Items []string
}

// Suggestions returns a copy of the configured items.
func (s Static) Suggestions(context.Context) ([]string, error) {
	out := make([]string, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// Top returns a copy of at most the first DisplayLimit entries of list.
func Top(list []string) []string {
	n := len(list)
	if n > DisplayLimit {
		n = DisplayLimit
	}
	out := make([]string, n)
	copy(out, list[:n])
	return out
}
