package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/tripcost/core/factory"
	"github.com/kilianp07/tripcost/core/model"
	"github.com/kilianp07/tripcost/core/prediction"
	"github.com/kilianp07/tripcost/infra/logger"
)

const maxBodyBytes = 1 << 20

func init() {
	_ = prediction.RegisterPredictor("http", func(conf map[string]any) (prediction.Predictor, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewClient(c)
	})
}

// Client calls the prediction service over HTTP.
type Client struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout()},
		log:    logger.New("predictor-client"),
	}, nil
}

// Predict posts req as string fields and decodes the returned costs.
//
// Errors:
//   - *prediction.RequestError when the request cannot be sent or the
//     response status is not 2xx. Message holds the body's "error" field.
//   - prediction.ErrMalformedResponse when a 2xx body lacks numeric costs.
func (c *Client) Predict(ctx context.Context, req model.TripRequest) (model.PredictionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.PredictionResult{}, &prediction.RequestError{Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if id := prediction.RequestIDFrom(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Errorf("send prediction request: %v", err)
		return model.PredictionResult{}, &prediction.RequestError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.PredictionResult{}, &prediction.RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		c.log.Warnf("prediction service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		return model.PredictionResult{}, &prediction.RequestError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(eb.Error)}
	}
	return decodeResult(data)
}

type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	AccommodationCost  *Cost `json:"accommodation_cost"`
	TransportationCost *Cost `json:"transportation_cost"`
}

func decodeResult(data []byte) (model.PredictionResult, error) {
	var rb resultBody
	if err := json.Unmarshal(data, &rb); err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %v", prediction.ErrMalformedResponse, err)
	}
	if rb.AccommodationCost == nil || rb.TransportationCost == nil {
		return model.PredictionResult{}, fmt.Errorf("%w: missing cost field", prediction.ErrMalformedResponse)
	}
	return model.PredictionResult{
		AccommodationCost:  float64(*rb.AccommodationCost),
		TransportationCost: float64(*rb.TransportationCost),
	}, nil
}

// Cost is a finite decimal encoded either as a JSON number or a numeric string.
type Cost float64

// UnmarshalJSON accepts 12.5 and "12.5".
func (c *Cost) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return fmt.Errorf("cost is null")
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cost %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("cost %q is not finite", s)
	}
	*c = Cost(v)
	return nil
}
