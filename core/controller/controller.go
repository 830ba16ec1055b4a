package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tripcost/core/events"
	"github.com/kilianp07/tripcost/core/form"
	"github.com/kilianp07/tripcost/core/logger"
	"github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/core/model"
	"github.com/kilianp07/tripcost/core/prediction"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

// DefaultSuccessWindow is how long the success flag stays raised.
const DefaultSuccessWindow = 3 * time.Second

// Controller owns the trip form and the request lifecycle.
type Controller struct {
	form          *form.Model
	predictor     prediction.Predictor
	log           logger.Logger
	metrics       metrics.MetricsSink
	bus           eventbus.Bus[events.StateEvent]
	sessionID     string
	successWindow time.Duration
	afterFunc     func(time.Duration, func())

	// mu may be held while taking the form lock, never the reverse: edit
	// listeners run after the form lock is released.
	mu          sync.Mutex
	phase       Phase
	submission  uint64
	requestID   string
	last        *model.PredictionResult
	message     string
	showSuccess bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Controller) { c.log = logger.OrNop(l) } }

// WithMetrics sets the sink recording each prediction attempt.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(c *Controller) {
		if s != nil {
			c.metrics = s
		}
	}
}

// WithEvents publishes every state change on bus.
func WithEvents(bus eventbus.Bus[events.StateEvent]) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithSessionID tags events and metrics with id. A random id is used otherwise.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithSuccessWindow overrides DefaultSuccessWindow. Non-positive values are ignored.
func WithSuccessWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.successWindow = d
		}
	}
}

// WithInitialRequest seeds the form instead of model.DefaultTripRequest.
func WithInitialRequest(req model.TripRequest) Option {
	return func(c *Controller) { c.form = form.New(req) }
}

// New creates a Controller in the Idle phase with the sample trip loaded.
func New(p prediction.Predictor, opts ...Option) (*Controller, error) {
	if p == nil {
		return nil, errors.New("controller: nil predictor")
	}
	c := &Controller{
		form:          form.New(model.DefaultTripRequest()),
		predictor:     p,
		log:           logger.Nop{},
		metrics:       metrics.NopSink{},
		sessionID:     uuid.NewString(),
		successWindow: DefaultSuccessWindow,
		afterFunc:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, o := range opts {
		o(c)
	}
	c.form.OnEdit(c.onEdit)
	return c, nil
}

// Form returns the form owned by the controller.
func (c *Controller) Form() *form.Model { return c.form }

// SessionID returns the id tagging this controller's events.
func (c *Controller) SessionID() string { return c.sessionID }

// SuccessWindow returns how long the success flag stays raised.
func (c *Controller) SuccessWindow() time.Duration { return c.successWindow }

// State returns a snapshot of the lifecycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		Phase:        c.phase,
		SubmissionID: c.submission,
		RequestID:    c.requestID,
		ShowSuccess:  c.showSuccess,
	}
	switch c.phase {
	case PhaseSucceeded:
		if c.last != nil {
			r := *c.last
			s.Result = &r
		}
	case PhaseFailed:
		s.Message = c.message
	}
	return s
}

// CanSubmit reports whether Submit would issue a request right now.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != PhaseSubmitting && c.form.IsValid()
}

// ShowSuccess reports whether the transient success flag is raised.
func (c *Controller) ShowSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showSuccess
}

// Submit issues one prediction request for the current form values. It is a
// no-op returning false when the form is invalid or a request is already in
// flight. The returned channel is closed once the outcome has been applied.
//
// The request is detached from ctx cancellation; only ctx values are kept.
func (c *Controller) Submit(ctx context.Context) (<-chan struct{}, bool) {
	c.mu.Lock()
	if c.phase == PhaseSubmitting {
		c.mu.Unlock()
		c.recordReject(metrics.RejectInFlight)
		return nil, false
	}
	req := c.form.Request()
	if bad := form.Check(req); len(bad) > 0 {
		c.mu.Unlock()
		c.log.Debugf("submit ignored: invalid fields %v", bad)
		c.recordReject(metrics.RejectInvalid)
		return nil, false
	}
	c.submission++
	id := c.submission
	rid := uuid.NewString()
	c.requestID = rid
	c.phase = PhaseSubmitting
	c.message = ""
	c.showSuccess = false
	ev := c.eventLocked()
	c.mu.Unlock()

	c.publish(ev)
	c.log.Infof("submission %d (%s) started for %q", id, rid, req.Destination)

	done := make(chan struct{})
	reqCtx := prediction.WithRequestID(context.WithoutCancel(ctx), rid)
	go c.run(reqCtx, id, rid, req, done)
	return done, true
}

func (c *Controller) run(ctx context.Context, id uint64, rid string, req model.TripRequest, done chan struct{}) {
	defer close(done)
	start := time.Now()
	res, err := c.predictor.Predict(ctx, req)
	if err == nil && !finite(res) {
		err = fmt.Errorf("%w: non-finite cost", prediction.ErrMalformedResponse)
	}
	latency := time.Since(start)

	c.mu.Lock()
	if err != nil {
		c.phase = PhaseFailed
		c.message = prediction.UserMessage(err)
	} else {
		c.phase = PhaseSucceeded
		c.last = &res
		c.showSuccess = true
		c.afterFunc(c.successWindow, func() { c.expireSuccess(id) })
	}
	ev := c.eventLocked()
	c.mu.Unlock()

	mev := metrics.PredictionEvent{
		SessionID:      c.sessionID,
		RequestID:      rid,
		Destination:    req.Destination,
		Accommodation:  req.Accommodation,
		Transportation: req.Transportation,
		DurationDays:   req.DurationDays(),
		Latency:        latency,
		Time:           time.Now(),
	}
	if err != nil {
		c.log.Warnf("submission %d (%s) failed after %s: %v", id, rid, latency, err)
		mev.Outcome = metrics.OutcomeFailure
		var re *prediction.RequestError
		if errors.As(err, &re) {
			mev.StatusCode = re.StatusCode
		}
	} else {
		c.log.Infof("submission %d (%s) succeeded in %s", id, rid, latency)
		mev.Outcome = metrics.OutcomeSuccess
		mev.Result = res
	}
	if merr := c.metrics.RecordPrediction(mev); merr != nil {
		c.log.Errorf("prediction metrics error: %v", merr)
	}
	c.publish(ev)
}

// expireSuccess lowers the success flag raised by submission id. Expiries of
// superseded submissions are ignored.
func (c *Controller) expireSuccess(id uint64) {
	c.mu.Lock()
	if c.submission != id || !c.showSuccess {
		c.mu.Unlock()
		return
	}
	c.showSuccess = false
	ev := c.eventLocked()
	c.mu.Unlock()
	c.publish(ev)
}

func (c *Controller) onEdit(f model.Field) {
	c.mu.Lock()
	if c.phase != PhaseFailed {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseIdle
	c.message = ""
	ev := c.eventLocked()
	c.mu.Unlock()
	c.log.Debugf("error cleared by edit of %s", f)
	c.publish(ev)
}

func (c *Controller) recordReject(reason string) {
	rec, ok := c.metrics.(metrics.SubmitRejectRecorder)
	if !ok {
		return
	}
	if err := rec.RecordSubmitRejected(reason); err != nil {
		c.log.Errorf("reject metrics error: %v", err)
	}
}

func (c *Controller) eventLocked() events.StateEvent {
	s := c.stateLocked()
	return events.StateEvent{
		SessionID:    c.sessionID,
		SubmissionID: s.SubmissionID,
		RequestID:    s.RequestID,
		Phase:        s.Phase.String(),
		Message:      s.Message,
		Result:       s.Result,
		ShowSuccess:  s.ShowSuccess,
		Time:         time.Now(),
	}
}

func (c *Controller) publish(ev events.StateEvent) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func finite(r model.PredictionResult) bool {
	for _, v := range []float64{r.AccommodationCost, r.TransportationCost} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
