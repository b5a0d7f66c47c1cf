package codec

import (
	"action-relay/domain"
	"action-relay/errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldFunc consumes the value of one field and returns how many bytes it used.
// A negative count is a protowire error code.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walk(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return parseError(n)
		}
		b = b[n:]
	}
	return nil
}

func parseError(n int) error {
	return fmt.Errorf("%w: %v", errors.ErrDecode, protowire.ParseError(n))
}

func consumeMessage(b []byte, decode func(m []byte) error) (int, error) {
	m, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	return n, decode(m)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendInt32 follows proto3 rules: zero is not written, negatives are sign extended.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	return appendVarint(b, num, uint64(int64(v)))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

func consumeInt32(b []byte, dst *int32) int {
	v, n := protowire.ConsumeVarint(b)
	*dst = int32(v)
	return n
}

// consumeString rejects invalid UTF-8 as proto3 string fields require.
func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n, nil
	}
	if !utf8.ValidString(v) {
		return n, fmt.Errorf("%w: string field is not valid UTF-8", errors.ErrDecode)
	}
	*dst = v
	return n, nil
}

func encodeOrderPizza(p domain.OrderPizza) []byte {
	var b []byte
	b = appendString(b, 1, p.PizzaName)
	b = appendInt32(b, 2, p.Count)
	b = appendString(b, 3, p.Size)
	return b
}

func decodeOrderPizza(m []byte) (domain.OrderPizza, error) {
	var p domain.OrderPizza
	err := walk(m, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &p.PizzaName)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &p.Count), nil
		case num == 3 && typ == protowire.BytesType:
			return consumeString(b, &p.Size)
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return p, err
}

func encodePlayVideoGame(p domain.PlayVideoGame) []byte {
	var b []byte
	b = appendString(b, 1, p.VideoGameName)
	b = appendInt32(b, 2, p.Players)
	return b
}

func decodePlayVideoGame(m []byte) (domain.PlayVideoGame, error) {
	var p domain.PlayVideoGame
	err := walk(m, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &p.VideoGameName)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &p.Players), nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return p, err
}

func encodeDrinkTea(p domain.DrinkTea) []byte {
	var b []byte
	b = appendString(b, 1, p.Region)
	b = appendInt32(b, 2, p.Temperature)
	return b
}

func decodeDrinkTea(m []byte) (domain.DrinkTea, error) {
	var p domain.DrinkTea
	err := walk(m, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &p.Region)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &p.Temperature), nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return p, err
}

func decodeUserCount(m []byte) (int32, error) {
	var count int32
	err := walk(m, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt32(b, &count), nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return count, err
}
