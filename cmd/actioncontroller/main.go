// Command actioncontroller runs ActionController as a standalone gRPC
// service: it consults PolicyManager, resolves node
// routing from the settings document, and dials StateManager + each
// node's NodeAgent.
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
	"github.com/agentoven/agentoven/control-plane/internal/policy"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-actioncontroller")
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

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsPath).Msg("failed to load settings document")
	}
	router := config.NewStaticRouter(settings, cfg.NodeAgentPort)

	var policyClient contracts.PolicyClient
	if cfg.PolicyManagerAddr != "" {
		conn, err := rpc.Dial(ctx, cfg.PolicyManagerAddr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.PolicyManagerAddr).Msg("failed to dial policy manager")
		}
		defer conn.Close()
		policyClient = policy.NewRemoteClient(rpc.NewPolicyManagerClient(conn))
	} else {
		log.Warn().Msg("no policy manager configured, allowing every trigger")
		policyClient = policy.AllowAll{}
	}

	stateAddr := fmt.Sprintf("%s:%d", cfg.PeerHost, cfg.StateManagerPort)
	stateConn, err := rpc.Dial(ctx, stateAddr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Str("addr", stateAddr).Msg("failed to dial state manager")
	}
	defer stateConn.Close()
	stateApplier := action.NewRemoteStateApplier(rpc.NewStateManagerClient(stateConn))

	nodeCaller := action.NewRemoteNodeCaller(func(ctx context.Context, addr string) (rpc.NodeAgentClient, error) {
		conn, err := rpc.Dial(ctx, addr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
		if err != nil {
			return nil, err
		}
		return rpc.NewNodeAgentClient(conn), nil
	})

	ctrl := action.NewController(kvStore, policyClient, router, stateApplier, nodeCaller)
	server := action.NewServer(ctrl)

	grpcServer := rpc.NewServer()
	rpc.RegisterActionControllerServer(grpcServer, server)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ActionControllerPort))
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

	log.Info().Int("port", cfg.ActionControllerPort).Msg("action controller ready")
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("grpc server failed")
	}
}
