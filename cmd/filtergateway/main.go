// Command filtergateway runs FilterGateway as a standalone gRPC service,
// dialing ActionController to dispatch fired triggers and serving
// HandleScenario to APIServer.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/action"
	"github.com/agentoven/agentoven/control-plane/internal/config"
	"github.com/agentoven/agentoven/control-plane/internal/filter"
	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	vsignal "github.com/agentoven/agentoven/control-plane/internal/signal"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-filtergateway")
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

	actionAddr := fmt.Sprintf("%s:%d", cfg.PeerHost, cfg.ActionControllerPort)
	conn, err := rpc.Dial(ctx, actionAddr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Str("addr", actionAddr).Msg("failed to dial action controller")
	}
	defer conn.Close()
	trigger := action.NewRemoteClient(rpc.NewActionControllerClient(conn))

	bus := vsignal.NewMemoryBus()
	engine := filter.NewEngine(bus, trigger)
	server := filter.NewServer(kvStore, engine)

	grpcServer := rpc.NewServer()
	rpc.RegisterFilterGatewayServer(grpcServer, server)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.FilterGatewayPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("shutting down gracefully")
		cancel()
		grpcServer.GracefulStop()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSecs)*time.Second)
		defer shutdownCancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	log.Info().Int("port", cfg.FilterGatewayPort).Msg("filter gateway ready")
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("grpc server failed")
	}
}
