package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/tripcost/core/events"
	"github.com/kilianp07/tripcost/infra/logger"
	"github.com/kilianp07/tripcost/internal/eventbus"
)

// StatePublisher forwards controller state events to an MQTT broker as JSON
// on <prefix>/<session_id>/state.
type StatePublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	status     string
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewStatePublisher connects to the broker and marks the publisher online.
func NewStatePublisher(cfg Config) (*StatePublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &StatePublisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		status:     cfg.StatusTopic(),
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(p.status, p.qos, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	p.cli = c
	return p, nil
}

// Topic returns the state topic of a session.
func (p *StatePublisher) Topic(sessionID string) string {
	return fmt.Sprintf("%s/%s/state", p.prefix, sessionID)
}

// Publish sends one event, retrying with exponential backoff.
func (p *StatePublisher) Publish(ev events.StateEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode state event: %w", err)
	}
	topic := p.Topic(ev.SessionID)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugw("state published", map[string]any{"topic": topic, "phase": ev.Phase})
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Run forwards events from bus until ctx is done or the bus is closed.
// The returned channel is closed when forwarding has stopped.
func (p *StatePublisher) Run(ctx context.Context, bus *eventbus.TypedBus[events.StateEvent]) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := p.Publish(ev); err != nil {
					p.log.Errorf("forward %s event for session %s: %v", ev.Phase, ev.SessionID, err)
				}
			}
		}
	}()
	return done
}

// Disconnect marks the publisher offline and closes the MQTT connection.
func (p *StatePublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		token := p.cli.Publish(p.status, p.qos, true, "offline")
		token.WaitTimeout(time.Second)
		p.cli.Disconnect(250)
	}
}
