// Package orderingrpc exposes the ordering resolver over gRPC.
//
// Messages are google.protobuf.Struct values so the service needs no generated
// code: a request is {"candidates": [...]} and a response is {"order": [...]}.
package orderingrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "autoconfig.v1.Ordering"

	sortMethod = "/" + ServiceName + "/Sort"
)

// OrderingServer is the server API for the Ordering service.
type OrderingServer interface {
	Sort(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc is the grpc.ServiceDesc for the Ordering service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderingServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sort",
			Handler:    sortHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "autoconfig/v1/ordering.proto",
}

func RegisterOrderingServer(s grpc.ServiceRegistrar, srv OrderingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func sortHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderingServer).Sort(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sortMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderingServer).Sort(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
