package server

import (
	"google.golang.org/grpc"
)

const (
	RelayServiceName = "relay.v1.RelayService"
	ConnectMethod    = "/relay.v1.RelayService/Connect"
)

// RelayServiceServer is the server API of relay.v1.RelayService.
// Frames are google.protobuf.BytesValue carrying the encoded requests and envelopes.
type RelayServiceServer interface {
	Connect(stream grpc.ServerStream) error
}

// RelayServiceDesc describes relay.v1.RelayService for grpc.Server.RegisterService
// and for clients opening the Connect stream.
var RelayServiceDesc = grpc.ServiceDesc{
	ServiceName: RelayServiceName,
	HandlerType: (*RelayServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Connect",
			Handler:       connectHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "proto/relay/v1/protocol.proto",
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(RelayServiceServer).Connect(stream)
}
