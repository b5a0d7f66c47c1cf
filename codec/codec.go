// Package codec reads and writes the relay wire schema (proto/relay/v1/protocol.proto).
//
// Messages are encoded field by field with protowire so the bytes are exactly
// what any protobuf runtime produces for the schema, without generated code.
package codec

import (
	"action-relay/domain"
	"action-relay/errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of ActionRequest.
const (
	requestActionType    protowire.Number = 1
	requestOrderPizza    protowire.Number = 2
	requestPlayVideoGame protowire.Number = 3
	requestDrinkTea      protowire.Number = 4
)

// Field numbers of ActionEnvelope.
const (
	envelopeActionType    protowire.Number = 1
	envelopeTime          protowire.Number = 2
	envelopeUserName      protowire.Number = 3
	envelopeUserJoin      protowire.Number = 4
	envelopeUserLeave     protowire.Number = 5
	envelopeOrderPizza    protowire.Number = 6
	envelopePlayVideoGame protowire.Number = 7
	envelopeDrinkTea      protowire.Number = 8
)

// Protobuf is the default codec of the relay. It is stateless and safe for concurrent use.
type Protobuf struct{}

func NewProtobuf() Protobuf {
	return Protobuf{}
}

// EncodeEnvelope serializes an envelope. The payload sub-message is always written,
// even when empty, so receivers can tell which action they got.
func (Protobuf) EncodeEnvelope(envelope domain.ActionEnvelope) ([]byte, error) {
	var b []byte
	b = appendVarint(b, envelopeActionType, uint64(envelope.Type()))
	b = appendVarint(b, envelopeTime, uint64(envelope.At.UnixMilli()))
	b = appendString(b, envelopeUserName, envelope.UserName)

	switch p := envelope.Payload.(type) {
	case domain.UserJoin:
		b = appendMessage(b, envelopeUserJoin, appendInt32(nil, 1, p.UserCount))
	case domain.UserLeave:
		b = appendMessage(b, envelopeUserLeave, appendInt32(nil, 1, p.UserCount))
	case domain.OrderPizza:
		b = appendMessage(b, envelopeOrderPizza, encodeOrderPizza(p))
	case domain.PlayVideoGame:
		b = appendMessage(b, envelopePlayVideoGame, encodePlayVideoGame(p))
	case domain.DrinkTea:
		b = appendMessage(b, envelopeDrinkTea, encodeDrinkTea(p))
	default:
		return nil, fmt.Errorf("%w: cannot encode envelope without payload", errors.ErrUnknownActionType)
	}
	return b, nil
}

// DecodeRequest parses a client request.
// A request whose action type is absent or not sendable by clients is returned
// with a nil Payload and no error; malformed bytes and non UTF-8 strings yield errors.ErrDecode.
// When the action type is known but its payload is missing, the zero payload is used.
func (Protobuf) DecodeRequest(data []byte) (domain.ActionRequest, error) {
	var (
		rawType ActionTypeValue
		pizza   domain.OrderPizza
		game    domain.PlayVideoGame
		tea     domain.DrinkTea
	)

	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == requestActionType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			rawType = ActionTypeValue(v)
			return n, nil
		case num == requestOrderPizza && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) (err error) { pizza, err = decodeOrderPizza(m); return })
		case num == requestPlayVideoGame && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) (err error) { game, err = decodePlayVideoGame(m); return })
		case num == requestDrinkTea && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) (err error) { tea, err = decodeDrinkTea(m); return })
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return domain.ActionRequest{}, err
	}

	request := domain.ActionRequest{RawType: rawType.ActionType()}
	switch request.RawType {
	case domain.ActionOrderPizza:
		request.Payload = pizza
	case domain.ActionPlayVideoGame:
		request.Payload = game
	case domain.ActionDrinkTea:
		request.Payload = tea
	}
	return request, nil
}

// EncodeRequest serializes a client request. Used by clients and tests.
func (Protobuf) EncodeRequest(request domain.ActionRequest) ([]byte, error) {
	var b []byte
	switch p := request.Payload.(type) {
	case domain.OrderPizza:
		b = appendVarint(b, requestActionType, uint64(domain.ActionOrderPizza))
		b = appendMessage(b, requestOrderPizza, encodeOrderPizza(p))
	case domain.PlayVideoGame:
		b = appendVarint(b, requestActionType, uint64(domain.ActionPlayVideoGame))
		b = appendMessage(b, requestPlayVideoGame, encodePlayVideoGame(p))
	case domain.DrinkTea:
		b = appendVarint(b, requestActionType, uint64(domain.ActionDrinkTea))
		b = appendMessage(b, requestDrinkTea, encodeDrinkTea(p))
	case nil:
		if request.RawType != domain.ActionTypeUnspecified {
			b = appendVarint(b, requestActionType, uint64(int64(request.RawType)))
		}
	}
	return b, nil
}

// DecodeEnvelope parses a server envelope. Used by clients and tests.
func (Protobuf) DecodeEnvelope(data []byte) (domain.ActionEnvelope, error) {
	var (
		rawType  ActionTypeValue
		millis   int64
		userName string
		payloads = make(map[domain.ActionType]domain.EnvelopePayload)
	)

	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == envelopeActionType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			rawType = ActionTypeValue(v)
			return n, nil
		case num == envelopeTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			millis = int64(v)
			return n, nil
		case num == envelopeUserName && typ == protowire.BytesType:
			return consumeString(b, &userName)
		case num == envelopeUserJoin && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) error {
				count, err := decodeUserCount(m)
				payloads[domain.ActionUserJoin] = domain.UserJoin{UserCount: count}
				return err
			})
		case num == envelopeUserLeave && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) error {
				count, err := decodeUserCount(m)
				payloads[domain.ActionUserLeave] = domain.UserLeave{UserCount: count}
				return err
			})
		case num == envelopeOrderPizza && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) error {
				p, err := decodeOrderPizza(m)
				payloads[domain.ActionOrderPizza] = p
				return err
			})
		case num == envelopePlayVideoGame && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) error {
				p, err := decodePlayVideoGame(m)
				payloads[domain.ActionPlayVideoGame] = p
				return err
			})
		case num == envelopeDrinkTea && typ == protowire.BytesType:
			return consumeMessage(b, func(m []byte) error {
				p, err := decodeDrinkTea(m)
				payloads[domain.ActionDrinkTea] = p
				return err
			})
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return domain.ActionEnvelope{}, err
	}

	actionType := rawType.ActionType()
	payload, ok := payloads[actionType]
	if !ok {
		payload = zeroEnvelopePayload(actionType)
	}
	if payload == nil {
		return domain.ActionEnvelope{}, fmt.Errorf("%w: %s", errors.ErrUnknownActionType, actionType)
	}
	return domain.ActionEnvelope{
		At:       time.UnixMilli(millis),
		UserName: userName,
		Payload:  payload,
	}, nil
}

// ActionTypeValue is the raw enum value read from the wire.
type ActionTypeValue uint64

// ActionType narrows the wire value to the enum, keeping unknown values visible.
func (v ActionTypeValue) ActionType() domain.ActionType {
	return domain.ActionType(int32(v))
}

func zeroEnvelopePayload(t domain.ActionType) domain.EnvelopePayload {
	switch t {
	case domain.ActionUserJoin:
		return domain.UserJoin{}
	case domain.ActionUserLeave:
		return domain.UserLeave{}
	case domain.ActionOrderPizza:
		return domain.OrderPizza{}
	case domain.ActionPlayVideoGame:
		return domain.PlayVideoGame{}
	case domain.ActionDrinkTea:
		return domain.DrinkTea{}
	default:
		return nil
	}
}
