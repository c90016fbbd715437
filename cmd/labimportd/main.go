package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/pipeline"
	"github.com/joseph-ayodele/labreport-import/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := pipeline.NewFromConfig(cfg, logger)

	// gRPC server
	grpcServer := grpc.NewServer(grpc.MaxRecvMsgSize(constants.MaxUploadBytes + 1<<20))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	server.RegisterLabImportServer(grpcServer, server.NewLabImportService(proc, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	var httpServer *server.HTTPServer
	if cfg.Server.HTTPAddr != "" {
		httpServer = server.NewHTTPServer(proc, logger)
		go func() {
			logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.Listen(cfg.Server.HTTPAddr); err != nil {
				logger.Error("http serve failed", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown error", "error", err)
		}
	}
	done := make(chan struct{})
	go func() { grpcServer.GracefulStop(); close(done) }()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	logger.Info("stopped")
}
