package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/formfill/internal/common"
)

const requestIDHeader = "x-request-id"

// UnaryInterceptor attaches a request ID (from the x-request-id header or a
// new UUID), applies timeout when positive and logs each call.
func UnaryInterceptor(logger *slog.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, id := common.EnsureRequestID(ctx)
		ctx = common.WithLogger(ctx, logger.With("request_id", id))

		ctx, cancel := common.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := handler(ctx, req)
		logger.Info("grpc.call",
			"method", info.FullMethod,
			"request_id", id,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
