package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/config"
	"github.com/fekuna/omnipos-fulfillment-service/internal/app"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/reconcile"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := app.NewLogger(cfg)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire store, integrations and use cases
	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize service", zap.Error(err))
	}
	defer a.Close()

	// 4. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	a.RegisterServices(grpcServer)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		return grpcServer.Serve(lis)
	})

	// 5. Production events from workshop devices
	if listener := a.NewProductionListener(); listener != nil {
		g.Go(func() error {
			listener.Start(gctx)
			return nil
		})
	}

	// 6. Periodic sync
	if cfg.Sync.IntervalSeconds > 0 {
		interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
		g.Go(func() error {
			runPeriodicSync(gctx, a.Sync, interval, appLogger)
			return nil
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func runPeriodicSync(ctx context.Context, uc reconcile.UseCase, interval time.Duration, log logger.ZapLogger) {
	log.Info("Starting periodic sync", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping periodic sync")
			return
		case <-ticker.C:
			// failures are already logged and recorded in sync history
			_, _ = uc.Sync(ctx)
		}
	}
}
