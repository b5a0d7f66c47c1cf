// Package runtime holds the live state of the relay and drives it.
// It turns connection lifecycle events into envelopes and fans them out,
// without knowing which transport a session comes from.
package runtime

import (
	"action-relay/contract"
	"action-relay/domain"
	"action-relay/errors"
	"action-relay/observability"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Dispatcher implements the lifecycle callbacks of every connection.
// It is stateless apart from the registry it was given, and safe for concurrent use:
// transports call it from one goroutine per connection.
type Dispatcher struct {
	log             *slog.Logger
	registry        contract.IRegistry
	codec           contract.Codec
	monitoring      *observability.MonitoringManager
	deliveryTimeout time.Duration
	now             func() time.Time
}

// NewDispatcher builds the dispatch engine.
// deliveryTimeout bounds each individual send of a broadcast; zero means no bound.
func NewDispatcher(log *slog.Logger, registry contract.IRegistry, codec contract.Codec,
	monitoring *observability.MonitoringManager, deliveryTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:             log,
		registry:        registry,
		codec:           codec,
		monitoring:      monitoring,
		deliveryTimeout: deliveryTimeout,
		now:             time.Now,
	}
}

// OnConnect names the new session and announces it to everyone, itself included.
func (d *Dispatcher) OnConnect(ctx context.Context, session contract.Session) {
	name, count := d.registry.Register(session)
	d.monitoring.IncrConnections()
	d.log.Info("Connected", "session_id", session.ID(), "user_name", name, "sessions", count)

	d.Broadcast(ctx, domain.ActionEnvelope{
		At:       d.now(),
		UserName: name,
		Payload:  domain.UserJoin{UserCount: int32(count)},
	})
}

// OnText only logs: commands are carried by binary frames exclusively.
func (d *Dispatcher) OnText(_ context.Context, session contract.Session, text string) {
	d.monitoring.IncrTextMessages()
	d.log.Debug("Text message ignored", "session_id", session.ID(), "text", text)
}

// OnBinary relays a client action. Anything that cannot be relayed is logged and dropped,
// the sender never gets an answer.
func (d *Dispatcher) OnBinary(ctx context.Context, session contract.Session, data []byte) {
	d.log.Debug("Binary message", "session_id", session.ID(), "size", len(data))

	request, err := d.codec.DecodeRequest(data)
	if err != nil {
		d.monitoring.IncrDecodeFailures()
		d.log.Error("Received a corrupt binary message", "session_id", session.ID(), "error", err)
		return
	}

	envelope, err := d.authorize(session, request)
	if err != nil {
		d.log.Error("Dropping action", "session_id", session.ID(),
			"action_type", request.Type().String(), "error", err)
		return
	}
	d.Broadcast(ctx, envelope)
}

// authorize stamps a request with the server time and the sender's name.
func (d *Dispatcher) authorize(session contract.Session, request domain.ActionRequest) (domain.ActionEnvelope, error) {
	if request.Payload == nil {
		d.monitoring.IncrUnknownActions()
		return domain.ActionEnvelope{}, errors.ErrUnknownActionType
	}

	name, ok := d.registry.DisplayName(session.ID())
	if !ok {
		d.monitoring.IncrUnregistered()
		return domain.ActionEnvelope{}, errors.ErrUnregisteredSession
	}

	envelope := domain.ActionEnvelope{At: d.now(), UserName: name}
	switch payload := request.Payload.(type) {
	case domain.OrderPizza:
		envelope.Payload = payload
	case domain.PlayVideoGame:
		envelope.Payload = payload
	case domain.DrinkTea:
		envelope.Payload = payload
	default:
		d.monitoring.IncrUnknownActions()
		return domain.ActionEnvelope{}, errors.ErrUnknownActionType
	}
	return envelope, nil
}

// OnDisconnect forgets the session and tells the remaining ones.
// A session unknown to the registry still produces a notification, with an empty name.
func (d *Dispatcher) OnDisconnect(ctx context.Context, session contract.Session) {
	name, count, ok := d.registry.Unregister(session)
	d.monitoring.IncrDisconnections()
	if !ok {
		d.log.Warn("Unknown session left", "session_id", session.ID(), "sessions", count)
	} else {
		d.log.Info("Left", "session_id", session.ID(), "user_name", name, "sessions", count)
	}

	d.Broadcast(ctx, domain.ActionEnvelope{
		At:       d.now(),
		UserName: name,
		Payload:  domain.UserLeave{UserCount: int32(count)},
	})
}

// Broadcast encodes the envelope once and hands it to every live session.
// Each recipient is served independently: a failing or slow one is logged and skipped,
// the others still get the envelope.
func (d *Dispatcher) Broadcast(ctx context.Context, envelope domain.ActionEnvelope) {
	data, err := d.codec.EncodeEnvelope(envelope)
	if err != nil {
		d.log.Error("Failed to encode envelope", "action_type", envelope.Type().String(), "error", err)
		return
	}
	d.monitoring.IncrBroadcasts()

	d.registry.ForEach(func(session contract.Session) {
		if err := d.deliver(ctx, session, data); err != nil {
			d.monitoring.IncrDeliveryFailures()
			d.log.Warn("Failed to deliver envelope",
				"session_id", session.ID(),
				"action_type", envelope.Type().String(),
				"error", err)
			return
		}
		d.monitoring.IncrDeliveries()
	})
}

func (d *Dispatcher) deliver(ctx context.Context, session contract.Session, data []byte) (err error) {
	// A panicking recipient counts as a failed delivery.
	defer func() {
		if r := recover(); r != nil {
			err = errors.ErrDelivery
		}
	}()

	if d.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.deliveryTimeout)
		defer cancel()
	}
	if err := session.SendBinary(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrDelivery, err)
	}
	return nil
}
