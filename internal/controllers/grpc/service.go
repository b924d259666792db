package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ServiceName is the fully qualified name of the Roman clock service
const ServiceName = "horologium.v1.RomanClock"

// Full method names, for clients calling through grpc.ClientConn.Invoke
const (
	MethodGetTime = "/" + ServiceName + "/GetTime"
	MethodGetSun  = "/" + ServiceName + "/GetSun"
	MethodGetMoon = "/" + ServiceName + "/GetMoon"
	MethodGetDate = "/" + ServiceName + "/GetDate"
)

// RomanClockServer is the server API for the RomanClock service. Requests and
// replies are protobuf well-known types. A Struct request carries the same
// parameters as the REST query string: latitude, longitude, timezone, at
// (RFC 3339) and date (YYYY-MM-DD). Replies carry the REST JSON body.
type RomanClockServer interface {
	GetTime(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMoon(context.Context, *timestamppb.Timestamp) (*structpb.Struct, error)
	GetDate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }
func newTimestamp() *timestamppb.Timestamp { return new(timestamppb.Timestamp) }

var romanClockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RomanClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTime", Handler: unaryHandler(MethodGetTime, newStruct, RomanClockServer.GetTime)},
		{MethodName: "GetSun", Handler: unaryHandler(MethodGetSun, newStruct, RomanClockServer.GetSun)},
		{MethodName: "GetMoon", Handler: unaryHandler(MethodGetMoon, newTimestamp, RomanClockServer.GetMoon)},
		{MethodName: "GetDate", Handler: unaryHandler(MethodGetDate, newStruct, RomanClockServer.GetDate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "horologium/v1/romanclock.proto",
}

// RegisterRomanClockServer registers srv on s
func RegisterRomanClockServer(s grpc.ServiceRegistrar, srv RomanClockServer) {
	s.RegisterService(&romanClockServiceDesc, srv)
}

// unaryHandler adapts a typed service method to grpc's method handler,
// running it through the server's interceptor when one is installed.
func unaryHandler[T proto.Message](
	fullMethod string,
	newRequest func() T,
	call func(RomanClockServer, context.Context, T) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RomanClockServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RomanClockServer), ctx, req.(T))
		}
		return interceptor(ctx, in, info, handler)
	}
}
