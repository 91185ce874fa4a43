// Command statemanager runs StateManager as a standalone gRPC service:
// owns the WorkloadInstance table and drives the reconciliation loop
// against ActionController.
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
	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/internal/state"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-statemanager")
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
	reconciler := action.NewRemoteClient(rpc.NewActionControllerClient(conn))

	interval := time.Duration(cfg.ReconcileInterval) * time.Second
	unhealthy := time.Duration(cfg.UnhealthyAfter) * time.Second
	mgr := state.NewManager(kvStore, reconciler, interval, unhealthy)
	server := state.NewServer(mgr)

	go mgr.Start(ctx)

	grpcServer := rpc.NewServer()
	rpc.RegisterStateManagerServer(grpcServer, server)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.StateManagerPort))
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

	log.Info().Int("port", cfg.StateManagerPort).Msg("state manager ready")
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("grpc server failed")
	}
}
