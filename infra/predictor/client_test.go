package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tripcost/core/factory"
	"github.com/kilianp07/tripcost/core/model"
	"github.com/kilianp07/tripcost/core/prediction"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{URL: srv.URL + "/predict"})
	require.NoError(t, err)
	return c
}

func TestClient_PredictSendsStringFields(t *testing.T) {
	var got map[string]any
	var reqID, ctype string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		ctype = r.Header.Get("Content-Type")
		reqID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"accommodation_cost": 1200.5, "transportation_cost": 300}`))
	})

	ctx := prediction.WithRequestID(context.Background(), "req-1")
	res, err := c.Predict(ctx, model.DefaultTripRequest())
	require.NoError(t, err)
	assert.Equal(t, model.PredictionResult{AccommodationCost: 1200.5, TransportationCost: 300}, res)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "req-1", reqID)
	assert.Equal(t, map[string]any{
		"destination":    "Sydney, Australia",
		"duration":       "7",
		"age":            "33",
		"gender":         "Male",
		"nationality":    "Canadian",
		"accommodation":  "Airbnb",
		"transportation": "Train",
	}, got)
}

func TestClient_PredictAcceptsNumericStrings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accommodation_cost": "99.90", "transportation_cost": " 10 "}`))
	})
	res, err := c.Predict(context.Background(), model.DefaultTripRequest())
	require.NoError(t, err)
	assert.InDelta(t, 99.9, res.AccommodationCost, 1e-9)
	assert.InDelta(t, 10, res.TransportationCost, 1e-9)
}

func TestClient_PredictServerError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail", http.StatusBadRequest, `{"error":"Model unavailable"}`, "Model unavailable"},
		{"empty body", http.StatusInternalServerError, ``, prediction.FallbackMessage},
		{"non json", http.StatusBadGateway, `<html>bad gateway</html>`, prediction.FallbackMessage},
		{"blank detail", http.StatusBadRequest, `{"error":"  "}`, prediction.FallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Predict(context.Background(), model.DefaultTripRequest())
			require.Error(t, err)
			var re *prediction.RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.StatusCode)
			assert.Equal(t, tt.message, prediction.UserMessage(err))
		})
	}
}

func TestClient_PredictMalformed(t *testing.T) {
	bodies := []string{
		`{"accommodation_cost": 10}`,
		`{"accommodation_cost": null, "transportation_cost": 1}`,
		`{"accommodation_cost": "abc", "transportation_cost": 1}`,
		`[]`,
		`not json`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.Predict(context.Background(), model.DefaultTripRequest())
			require.ErrorIs(t, err, prediction.ErrMalformedResponse)
			assert.Equal(t, prediction.FallbackMessage, prediction.UserMessage(err))
		})
	}
}

func TestClient_PredictTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{URL: url})
	require.NoError(t, err)
	_, err = c.Predict(context.Background(), model.DefaultTripRequest())
	var re *prediction.RequestError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.StatusCode)
	assert.Equal(t, prediction.FallbackMessage, prediction.UserMessage(err))
}

func TestClient_PredictCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accommodation_cost": 1, "transportation_cost": 1}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Predict(ctx, model.DefaultTripRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfig_Validate(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	assert.Equal(t, DefaultURL, c.URL)
	assert.Equal(t, 10, c.TimeoutSeconds)
	require.NoError(t, c.Validate())

	c.URL = "ftp://example.com/predict"
	assert.Error(t, c.Validate())
}

func TestNewPredictorHTTP(t *testing.T) {
	p, err := prediction.NewPredictor(factory.ModuleConfig{
		Type: "http",
		Conf: map[string]any{"url": "http://127.0.0.1:5000/predict", "timeout_seconds": "3"},
	})
	require.NoError(t, err)
	c, ok := p.(*Client)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:5000/predict", c.url)
	assert.Equal(t, Config{TimeoutSeconds: 3}.Timeout(), c.client.Timeout)
}
