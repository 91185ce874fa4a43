// Command apiserver runs APIServer as a standalone REST service:
// ingests artifacts into KV and dials FilterGateway to dispatch scenario
// lifecycle.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/apiserver"
	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/internal/config"
	"github.com/agentoven/agentoven/control-plane/internal/filter"
	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-apiserver")
	shutdownTelemetry, err := telemetry.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kvStore, err := kv.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open kv store")
	}
	defer kvStore.Close()

	filterAddr := fmt.Sprintf("%s:%d", cfg.PeerHost, cfg.FilterGatewayPort)
	conn, err := rpc.Dial(ctx, filterAddr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Str("addr", filterAddr).Msg("failed to dial filter gateway")
	}
	defer conn.Close()
	notifier := filter.NewRemoteNotifier(rpc.NewFilterGatewayClient(conn))

	svc := artifact.NewService(kvStore, notifier)
	handlers := apiserver.NewHandlers(svc)
	httpHandler := apiserver.NewRouter(cfg, handlers)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIServerPort),
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("shutting down gracefully")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSecs)*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = shutdownTelemetry(shutdownCtx)
	}()

	log.Info().Int("port", cfg.APIServerPort).Msg("api server ready")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
