package client

import (
	"action-relay/codec"
	"action-relay/domain"
	"action-relay/infrastructure/grpc/server"
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RelayClient is one participant connected over gRPC.
// Send and Recv may be used from two goroutines, not more.
type RelayClient struct {
	stream grpc.ClientStream
	codec  codec.Protobuf
}

// Connect opens the relay stream. The session lives until ctx is canceled or Close is called.
func Connect(ctx context.Context, conn grpc.ClientConnInterface, opts ...grpc.CallOption) (*RelayClient, error) {
	stream, err := conn.NewStream(ctx, &server.RelayServiceDesc.Streams[0], server.ConnectMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &RelayClient{stream: stream, codec: codec.NewProtobuf()}, nil
}

func (c *RelayClient) Send(request domain.ActionRequest) error {
	data, err := c.codec.EncodeRequest(request)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// SendRaw writes bytes as they are, valid or not.
func (c *RelayClient) SendRaw(data []byte) error {
	return c.stream.SendMsg(wrapperspb.Bytes(data))
}

// Recv blocks until the next envelope arrives.
func (c *RelayClient) Recv() (domain.ActionEnvelope, error) {
	frame := &wrapperspb.BytesValue{}
	if err := c.stream.RecvMsg(frame); err != nil {
		return domain.ActionEnvelope{}, err
	}
	return c.codec.DecodeEnvelope(frame.GetValue())
}

// Close ends the session from the client side. The server announces the leave.
func (c *RelayClient) Close() error {
	return c.stream.CloseSend()
}
