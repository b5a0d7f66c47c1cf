package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrDecode              = fmt.Errorf("corrupt action request")
	ErrUnknownActionType   = fmt.Errorf("unknown action type")
	ErrUnregisteredSession = fmt.Errorf("message from unregistered session")
	ErrDelivery            = fmt.Errorf("delivery failed")
	ErrSessionClosed       = fmt.Errorf("session closed")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrInvalidConfig       = fmt.Errorf("invalid configuration")
)

// MapToGRPCError converts relay errors into gRPC status errors.
// Errors that already carry a status are returned untouched.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrDecode), errors.Is(err, ErrUnknownActionType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrSessionClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrUnregisteredSession):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
