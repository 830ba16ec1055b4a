package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tripcost/core/model"
)

func TestEstimate(t *testing.T) {
	res, err := Estimate(model.DefaultTripRequest())
	require.NoError(t, err)
	// Sydney 1.15: Airbnb 110*7, Train 300.
	assert.InDelta(t, 885.5, res.AccommodationCost, 1e-9)
	assert.InDelta(t, 345, res.TransportationCost, 1e-9)

	req := model.DefaultTripRequest()
	req.Destination = "Nowhere"
	req.Duration = "2.5"
	req.Age = "20"
	req.Accommodation = "Hostel"
	req.Transportation = "Car"
	res, err = Estimate(req)
	require.NoError(t, err)
	assert.InDelta(t, 90, res.AccommodationCost, 1e-9)
	assert.InDelta(t, 337.5, res.TransportationCost, 1e-9)
}

func TestEstimate_Invalid(t *testing.T) {
	mutate := map[string]func(*model.TripRequest){
		"empty destination": func(r *model.TripRequest) { r.Destination = " " },
		"bad duration":      func(r *model.TripRequest) { r.Duration = "seven" },
		"zero duration":     func(r *model.TripRequest) { r.Duration = "0" },
		"bad age":           func(r *model.TripRequest) { r.Age = "" },
		"accommodation":     func(r *model.TripRequest) { r.Accommodation = "Tent" },
		"transportation":    func(r *model.TripRequest) { r.Transportation = "Boat" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			req := model.DefaultTripRequest()
			fn(&req)
			_, err := Estimate(req)
			assert.Error(t, err)
		})
	}
}

func TestServer_Predict(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(":0", reg)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(model.DefaultTripRequest())
	resp, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.InDelta(t, 885.5, out["accommodation_cost"], 1e-9)
	assert.InDelta(t, 345, out["transportation_cost"], 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.total.WithLabelValues("success")))
}

func TestServer_PredictBadRequest(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewBufferString(`{"destination":"Paris"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["error"], "duration")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.total.WithLabelValues("error")))
}

func TestServer_AcceptsNumbers(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body := `{"destination":"Paris, France","duration":3,"age":40,"gender":"Female",` +
		`"nationality":"French","accommodation":"Hotel","transportation":"Flight"}`
	resp, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartAndClient(t *testing.T) {
	s := NewServer("127.0.0.1:0", prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	c, err := NewClient(Config{URL: "http://" + s.Addr() + "/predict"})
	require.NoError(t, err)
	res, err := c.Predict(context.Background(), model.DefaultTripRequest())
	require.NoError(t, err)
	assert.InDelta(t, 1230.5, res.Total(), 1e-9)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
