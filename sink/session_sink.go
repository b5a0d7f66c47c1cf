package sink

import (
	"action-relay/errors"
	"context"
	"sync"
)

// SessionSink is the outbound side of one connection.
// The dispatcher pushes encoded envelopes through SendBinary and the transport's
// single writer goroutine drains Outbound, so the socket only ever has one writer.
type SessionSink struct {
	id       string
	outbound chan []byte
	done     chan struct{}
	once     sync.Once
}

func NewSessionSink(id string, bufferSize int) *SessionSink {
	return &SessionSink{
		id:       id,
		outbound: make(chan []byte, bufferSize),
		done:     make(chan struct{}),
	}
}

func (s *SessionSink) ID() string {
	return s.id
}

// SendBinary queues data for the writer.
// It waits while the buffer is full, until the context is done or the session closes.
func (s *SessionSink) SendBinary(ctx context.Context, data []byte) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}

	select {
	case s.outbound <- data:
		return nil
	case <-s.done:
		return errors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outbound is drained by the transport writer.
// It is never closed: writers stop on Done.
func (s *SessionSink) Outbound() <-chan []byte {
	return s.outbound
}

func (s *SessionSink) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as gone. Safe to call several times.
func (s *SessionSink) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}
