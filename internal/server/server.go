package server

import (
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer returns a server with svc, the health service and reflection
// registered. The health server is returned so callers can flip it to
// NOT_SERVING on shutdown.
func NewGRPCServer(svc FormFillServer, logger *slog.Logger, timeout time.Duration, maxMsgBytes int) (*grpc.Server, *health.Server) {
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(UnaryInterceptor(logger, timeout))}
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes))
	}
	grpcServer := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	RegisterFormFillServer(grpcServer, svc)
	return grpcServer, hs
}
