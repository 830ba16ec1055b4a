package prediction

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/tripcost/core/model"
)

// FallbackMessage is shown when a failure carries no server-provided detail.
const FallbackMessage = "Prediction failed. Please try again."

// Predictor estimates trip costs.
type Predictor interface {
	// Predict sends one request for req and returns the parsed costs.
	Predict(ctx context.Context, req model.TripRequest) (model.PredictionResult, error)
}

// ErrMalformedResponse marks a successful response whose cost fields are
// missing or not numeric.
var ErrMalformedResponse = errors.New("malformed prediction response")

// RequestError reports a transport failure or a non-2xx response.
type RequestError struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	// Message is the server-provided error detail, if any.
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("prediction request: status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("prediction request: status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("prediction request: %v", e.Err)
	default:
		return "prediction request failed"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage returns the text displayed for err: the server detail when one
// was provided, FallbackMessage otherwise.
func UserMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return FallbackMessage
}

type requestIDKey struct{}

// WithRequestID attaches the id used to correlate one prediction request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id attached by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
