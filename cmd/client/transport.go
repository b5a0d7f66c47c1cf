package main

import (
	"action-relay/codec"
	"action-relay/domain"
	"action-relay/infrastructure/grpc/client"
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// relayConn is a participant connection, whatever the transport.
// Send and Close are called from one goroutine, Recv from another.
type relayConn interface {
	Send(request domain.ActionRequest) error
	Recv() (domain.ActionEnvelope, error)
	Close() error
}

type wsConn struct {
	ws    *websocket.Conn
	codec codec.Protobuf
}

func (c *wsConn) Send(request domain.ActionRequest) error {
	data, err := c.codec.EncodeRequest(request)
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConn) Recv() (domain.ActionEnvelope, error) {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return domain.ActionEnvelope{}, err
		}
		if messageType == websocket.BinaryMessage {
			return c.codec.DecodeEnvelope(data)
		}
	}
}

func (c *wsConn) Close() error {
	return c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// dial opens the configured transport. release frees what outlives Close.
func dial(ctx context.Context, config Config) (conn relayConn, release func(), err error) {
	switch config.Transport {
	case "grpc":
		cc, err := grpc.NewClient(config.GrpcAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, err
		}
		relay, err := client.Connect(ctx, cc)
		if err != nil {
			_ = cc.Close()
			return nil, nil, err
		}
		return relay, func() { _ = cc.Close() }, nil
	case "websocket":
		ws, _, err := websocket.DefaultDialer.DialContext(ctx, config.RelayURL, nil)
		if err != nil {
			return nil, nil, err
		}
		return &wsConn{ws: ws, codec: codec.NewProtobuf()}, func() { _ = ws.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", config.Transport)
	}
}
