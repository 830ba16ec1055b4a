// Package monitoring defines the error reporting hook used for failed
// predictions.
package monitoring

import "time"

// Monitor reports errors to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration) bool                  { return true }
