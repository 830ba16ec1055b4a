package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/kilianp07/tripcost/core/model"
	"github.com/kilianp07/tripcost/infra/logger"
)

// Server is a local stand-in for the prediction service. It answers
// POST /predict with Estimate and allows cross-origin calls.
type Server struct {
	mu    sync.RWMutex
	addr  string
	log   logger.Logger
	total *prometheus.CounterVec
}

// NewServer creates a mock prediction service and registers its request
// counter on reg. A nil registerer defaults to the global registerer.
func NewServer(addr string, reg prometheus.Registerer) *Server {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	log := logger.New("predictor-mock")
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripcost_mock_predictions_total",
		Help: "Predictions answered by the mock prediction service",
	}, []string{"outcome"})
	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				total = exist
			} else {
				log.Errorf("existing collector for tripcost_mock_predictions_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	return &Server{addr: addr, log: log, total: total}
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	r := httprouter.New()
	r.GET("/ping", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	r.POST("/predict", s.handlePredict)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	return c.Handler(r)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.fail(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	var req model.TripRequest
	for _, f := range model.Fields {
		v, ok := raw[string(f)]
		if !ok || v == nil {
			s.fail(w, fmt.Errorf("missing field %q", f))
			return
		}
		switch t := v.(type) {
		case string:
			req.Set(f, t)
		case float64:
			req.Set(f, fmt.Sprint(t))
		default:
			s.fail(w, fmt.Errorf("field %q must be a string", f))
			return
		}
	}
	res, err := Estimate(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.total.WithLabelValues("success").Inc()
	s.log.Infof("predicted %.2f for %s (request %s)", res.Total(), req.Destination, r.Header.Get("X-Request-ID"))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.total.WithLabelValues("error").Inc()
	s.log.Warnf("prediction rejected: %v", err)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("mock server shutdown: %v", err)
		}
	}()
	s.log.Infof("mock prediction service listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the listening address once Start has been called.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}
