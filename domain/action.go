// Package domain contains core concepts of the relay.
// This file defines the actions exchanged between clients and the server.
// No runtime, network, or encoding logic should be added here.
package domain

import (
	"fmt"
	"time"
)

type ActionType int32

const (
	ActionTypeUnspecified ActionType = iota
	ActionUserJoin
	ActionUserLeave
	ActionOrderPizza
	ActionPlayVideoGame
	ActionDrinkTea
)

func (t ActionType) String() string {
	switch t {
	case ActionTypeUnspecified:
		return "ACTION_TYPE_UNSPECIFIED"
	case ActionUserJoin:
		return "USER_JOIN"
	case ActionUserLeave:
		return "USER_LEAVE"
	case ActionOrderPizza:
		return "ORDER_PIZZA"
	case ActionPlayVideoGame:
		return "PLAY_VIDEO_GAME"
	case ActionDrinkTea:
		return "DRINK_TEA"
	default:
		return fmt.Sprintf("ActionType(%d)", int32(t))
	}
}

// EnvelopePayload is implemented by every payload the server is allowed to broadcast.
// The set is closed: only types of this package implement it.
type EnvelopePayload interface {
	ActionType() ActionType
	isEnvelopePayload()
}

// RequestPayload is implemented by the payloads a client is allowed to submit.
// Every RequestPayload is also an EnvelopePayload so it can be relayed as is.
type RequestPayload interface {
	EnvelopePayload
	isRequestPayload()
}

type UserJoin struct {
	UserCount int32
}

type UserLeave struct {
	UserCount int32
}

type OrderPizza struct {
	PizzaName string
	Count     int32
	Size      string
}

type PlayVideoGame struct {
	VideoGameName string
	Players       int32
}

type DrinkTea struct {
	Region      string
	Temperature int32
}

func (UserJoin) ActionType() ActionType      { return ActionUserJoin }
func (UserLeave) ActionType() ActionType     { return ActionUserLeave }
func (OrderPizza) ActionType() ActionType    { return ActionOrderPizza }
func (PlayVideoGame) ActionType() ActionType { return ActionPlayVideoGame }
func (DrinkTea) ActionType() ActionType      { return ActionDrinkTea }

func (UserJoin) isEnvelopePayload()      {}
func (UserLeave) isEnvelopePayload()     {}
func (OrderPizza) isEnvelopePayload()    {}
func (PlayVideoGame) isEnvelopePayload() {}
func (DrinkTea) isEnvelopePayload()      {}

func (OrderPizza) isRequestPayload()    {}
func (PlayVideoGame) isRequestPayload() {}
func (DrinkTea) isRequestPayload()      {}

// ActionRequest is what a client submits. It carries neither identity nor time:
// both are assigned by the server.
// Payload is nil when the action type is absent or not one a client may send,
// RawType keeps the value read from the wire for diagnostics.
type ActionRequest struct {
	RawType ActionType
	Payload RequestPayload
}

// Type returns the action type of the payload, or the raw wire value when
// the request carries no recognized payload.
func (r ActionRequest) Type() ActionType {
	if r.Payload == nil {
		return r.RawType
	}
	return r.Payload.ActionType()
}

// ActionEnvelope is the server-authorized version of an action, broadcast to every session.
type ActionEnvelope struct {
	At       time.Time
	UserName string
	Payload  EnvelopePayload
}

func (e ActionEnvelope) Type() ActionType {
	if e.Payload == nil {
		return ActionTypeUnspecified
	}
	return e.Payload.ActionType()
}
