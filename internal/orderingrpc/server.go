package orderingrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

const (
	candidatesField = "candidates"
	orderField      = "order"
)

// Server implements OrderingServer. Every call sorts against one snapshot of
// source, so a reloading store is picked up without restart.
type Server struct {
	source   metadata.Snapshotter
	recorder *metrics.Recorder
}

func NewServer(source metadata.Snapshotter, recorder *metrics.Recorder) *Server {
	return &Server{source: source, recorder: recorder}
}

func (s *Server) Sort(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := log.FromContext(ctx)

	names, err := candidatesFrom(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	start := time.Now()
	order, err := sorter.New(s.source.Snapshot()).Sort(names)
	s.recorder.ObserveSort(time.Since(start), err)
	if err != nil {
		if errors.Is(err, sorter.ErrCycle) {
			logger.Info("rejecting sort request", "reason", err.Error())
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		logger.Error(err, "sort failed", "candidateCount", len(names))
		return nil, status.Error(codes.Internal, err.Error())
	}
	logger.V(1).Info("sorted candidates", "candidateCount", len(names))

	values := make([]any, len(order))
	for i, name := range order {
		values[i] = name
	}
	resp, err := structpb.NewStruct(map[string]any{orderField: values})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func candidatesFrom(req *structpb.Struct) ([]string, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	for key := range req.GetFields() {
		if key != candidatesField {
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}
	v, ok := req.GetFields()[candidatesField]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%q must be a list of strings", candidatesField)
	}
	names := make([]string, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok || s.StringValue == "" {
			return nil, fmt.Errorf("%s[%d] must be a non-empty string", candidatesField, i)
		}
		names = append(names, s.StringValue)
	}
	return names, nil
}

// NewGRPCServer returns a gRPC server with the Ordering and health services
// registered. Every call carries logger in its context.
func NewGRPCServer(srv OrderingServer, logger logr.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	gs := grpc.NewServer(opts...)
	RegisterOrderingServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs, hs
}

func loggingInterceptor(logger logr.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = log.IntoContext(ctx, logger.WithValues("method", info.FullMethod))
		return handler(ctx, req)
	}
}
