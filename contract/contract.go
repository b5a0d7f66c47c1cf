//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"action-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Session is one connected participant as seen by the relay.
// The transport owns the underlying connection; the relay only references it.
type Session interface {
	ID() string
	SendBinary(ctx context.Context, data []byte) error
}

// Codec turns actions into bytes and back using the relay wire schema.
type Codec interface {
	EncodeEnvelope(envelope domain.ActionEnvelope) ([]byte, error)
	DecodeRequest(data []byte) (domain.ActionRequest, error)
}

type IRegistry interface {
	Register(session Session) (name string, count int)
	Unregister(session Session) (name string, count int, ok bool)
	DisplayName(sessionID string) (string, bool)
	CurrentCount() int
	ForEach(visit func(session Session))
}

// IDispatcher is the set of lifecycle callbacks a transport drives for each connection.
type IDispatcher interface {
	OnConnect(ctx context.Context, session Session)
	OnText(ctx context.Context, session Session, text string)
	OnBinary(ctx context.Context, session Session, data []byte)
	OnDisconnect(ctx context.Context, session Session)
}
