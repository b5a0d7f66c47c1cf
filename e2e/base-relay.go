package e2e

import (
	"action-relay/codec"
	"action-relay/domain"
	"action-relay/infrastructure/grpc/client"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration. Without a relay address the suite is skipped.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayWsURL == "" && s.Config.RelayGrpcAddr == "" {
		s.T().Skip("E2E_RELAY_WS_URL and E2E_RELAY_GRPC_ADDR are unset, no relay to test against")
	}
}

func (s *BaseRelaySuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Participant is one connected client. Envelopes are buffered by a background reader.
type Participant struct {
	Name     string
	t        *testing.T
	timeout  time.Duration
	send     func(domain.ActionRequest) error
	sendRaw  func([]byte) error
	close    func() error
	incoming chan domain.ActionEnvelope
}

func newParticipant(t *testing.T, name string, timeout time.Duration) *Participant {
	return &Participant{Name: name, t: t, timeout: timeout, incoming: make(chan domain.ActionEnvelope, 64)}
}

func (p *Participant) read(recv func() (domain.ActionEnvelope, error)) {
	defer close(p.incoming)
	for {
		envelope, err := recv()
		if err != nil {
			return
		}
		p.incoming <- envelope
	}
}

func (p *Participant) Send(payload domain.RequestPayload) {
	p.t.Helper()
	if err := p.send(domain.ActionRequest{Payload: payload}); err != nil {
		p.t.Fatalf("%s failed to send %s: %v", p.Name, payload.ActionType(), err)
	}
}

func (p *Participant) SendRaw(data []byte) {
	p.t.Helper()
	if err := p.sendRaw(data); err != nil {
		p.t.Fatalf("%s failed to send raw bytes: %v", p.Name, err)
	}
}

// Await returns the first envelope matching, skipping traffic from other clients of the relay.
func (p *Participant) Await(match func(domain.ActionEnvelope) bool) domain.ActionEnvelope {
	p.t.Helper()
	deadline := time.After(p.timeout)
	for {
		select {
		case envelope, ok := <-p.incoming:
			if !ok {
				p.t.Fatalf("%s: connection closed while waiting", p.Name)
			}
			if match(envelope) {
				return envelope
			}
		case <-deadline:
			p.t.Fatalf("%s: no matching envelope after %v", p.Name, p.timeout)
		}
	}
}

// AwaitFrom waits for an envelope of the given type sent as userName.
func (p *Participant) AwaitFrom(userName string, actionType domain.ActionType) domain.ActionEnvelope {
	p.t.Helper()
	return p.Await(func(e domain.ActionEnvelope) bool {
		return e.UserName == userName && e.Type() == actionType
	})
}

// AwaitOwnJoin returns the first join, which the relay sends to the newcomer itself.
func (p *Participant) AwaitOwnJoin() domain.ActionEnvelope {
	p.t.Helper()
	return p.Await(func(e domain.ActionEnvelope) bool { return e.Type() == domain.ActionUserJoin })
}

func (p *Participant) Close() {
	_ = p.close()
}

// ConnectWebsocket joins the relay over websocket.
func (s *BaseRelaySuite) ConnectWebsocket(name string) *Participant {
	t := s.T()
	if s.Config.RelayWsURL == "" {
		t.Skip("E2E_RELAY_WS_URL is unset")
	}
	s.header(t, "websocket: "+name)

	ws, _, err := websocket.DefaultDialer.Dial(s.Config.RelayWsURL, nil)
	s.Require().NoError(err, "Failed to connect to "+s.Config.RelayWsURL)
	t.Cleanup(func() { _ = ws.Close() })

	wire := codec.NewProtobuf()
	p := newParticipant(t, name, s.Config.Timeout)
	p.sendRaw = func(data []byte) error { return ws.WriteMessage(websocket.BinaryMessage, data) }
	p.send = func(request domain.ActionRequest) error {
		data, err := wire.EncodeRequest(request)
		if err != nil {
			return err
		}
		return p.sendRaw(data)
	}
	p.close = func() error {
		return ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	go p.read(func() (domain.ActionEnvelope, error) {
		for {
			messageType, data, err := ws.ReadMessage()
			if err != nil {
				return domain.ActionEnvelope{}, err
			}
			if messageType == websocket.BinaryMessage {
				return wire.DecodeEnvelope(data)
			}
		}
	})
	return p
}

// ConnectGrpc joins the relay over the gRPC stream. Frames are logged as JSON when E2E_DEBUG_JSON is set.
func (s *BaseRelaySuite) ConnectGrpc(name string) *Participant {
	t := s.T()
	if s.Config.RelayGrpcAddr == "" {
		t.Skip("E2E_RELAY_GRPC_ADDR is unset")
	}
	s.header(t, "gRPC: "+name)

	conn, err := grpc.NewClient(s.Config.RelayGrpcAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStreamInterceptor(s.frameLogger(t, name)),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.RelayGrpcAddr)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	relay, err := client.Connect(ctx, conn)
	s.Require().NoError(err)

	p := newParticipant(t, name, s.Config.Timeout)
	p.send = relay.Send
	p.sendRaw = relay.SendRaw
	p.close = relay.Close
	go p.read(relay.Recv)
	return p
}

func (s *BaseRelaySuite) frameLogger(t *testing.T, name string) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string,
		streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		stream, err := streamer(ctx, desc, cc, method, opts...)
		if err != nil || !s.Config.DebugJSON {
			return stream, err
		}
		return &loggedStream{ClientStream: stream, t: t, name: name}, nil
	}
}

type loggedStream struct {
	grpc.ClientStream
	t    *testing.T
	name string
}

var marshaler = protojson.MarshalOptions{
	UseProtoNames:   true,
	EmitUnpopulated: true,
}

func (l *loggedStream) SendMsg(m any) error {
	l.log("SEND", m)
	return l.ClientStream.SendMsg(m)
}

func (l *loggedStream) RecvMsg(m any) error {
	err := l.ClientStream.RecvMsg(m)
	if err == nil {
		l.log("RECV", m)
	}
	return err
}

func (l *loggedStream) log(direction string, m any) {
	msg, ok := m.(proto.Message)
	if !ok {
		return
	}
	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "%s %s: %s", l.name, direction, marshaler.Format(msg))
	l.t.Log(logBuilder.String())
}
