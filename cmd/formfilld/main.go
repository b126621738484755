package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/formfill/internal/app"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/server"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default: ./formfill.yaml)")
	flag.Parse()

	cfg, err := common.LoadConfig(*cfgFile)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	if cfg.Templates.Watch && cfg.Templates.Dir != "" {
		go func() {
			if err := stack.Templates.Watch(ctx); err != nil {
				logger.Warn("template watch stopped", "error", err)
			}
		}()
	}

	svc := server.NewFormFillService(
		stack.Processor,
		stack.Classifier,
		stack.Templates,
		stack.Exporter,
		server.Options{MaxImageBytes: cfg.Server.MaxImageBytes},
		logger,
	)
	// base64 inflates images by 4/3; leave room for the other members
	maxMsg := 0
	if cfg.Server.MaxImageBytes > 0 {
		maxMsg = cfg.Server.MaxImageBytes/3*4 + 1<<20
	}
	grpcServer, hs := server.NewGRPCServer(svc, logger, cfg.Server.RequestTimeout, maxMsg)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", lis.Addr().String(), "ocr_variants", stack.Selector.Variants())

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("grpc serve", "error", err)
		}
	}
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
