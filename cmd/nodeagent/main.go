// Command nodeagent runs NodeAgent as a standalone gRPC service:
// dispatches HandleWorkload to this node's configured backend dialect
// (bluechi or direct) and best-effort reports observed status back to
// StateManager.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/config"
	"github.com/agentoven/agentoven/control-plane/internal/nodeagent"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"
	"github.com/agentoven/agentoven/control-plane/pkg/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-nodeagent")
	shutdownTelemetry, err := telemetry.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodeName := os.Getenv("PICCOLO_NODE_NAME")
	if nodeName == "" {
		log.Fatal().Msg("PICCOLO_NODE_NAME must identify which settings-document node this process serves")
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsPath).Msg("failed to load settings document")
	}

	var dialect string
	found := false
	for _, n := range settings.Nodes() {
		if n.Name == nodeName {
			dialect = n.Type
			found = true
			break
		}
	}
	if !found {
		log.Fatal().Str("node", nodeName).Msg("node not present in settings document")
	}

	backend, err := nodeagent.NewBackend(dialect, nodeName, os.Getenv("PICCOLO_CONTAINER_RUNTIME"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct node backend")
	}

	stateAddr := fmt.Sprintf("%s:%d", cfg.PeerHost, cfg.StateManagerPort)
	conn, err := rpc.Dial(ctx, stateAddr, time.Duration(cfg.RPCDeadlineSecs)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Str("addr", stateAddr).Msg("failed to dial state manager")
	}
	defer conn.Close()
	reporter := nodeagentStatusReporter{cc: rpc.NewStateManagerClient(conn)}

	dispatcher := nodeagent.NewDispatcher(backend, reporter, nodeName)
	server := nodeagent.NewServer(dispatcher)

	grpcServer := rpc.NewServer()
	rpc.RegisterNodeAgentServer(grpcServer, server)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.NodeAgentPort))
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

	log.Info().Int("port", cfg.NodeAgentPort).Str("node", nodeName).Str("dialect", dialect).Msg("node agent ready")
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("grpc server failed")
	}
}

// nodeagentStatusReporter adapts rpc.StateManagerClient to
// nodeagent.StatusReporter for the split deployment.
type nodeagentStatusReporter struct {
	cc rpc.StateManagerClient
}

func (r nodeagentStatusReporter) ReportStatus(ctx context.Context, id models.InstanceID, current models.Status, errMsg string) error {
	_, err := r.cc.ReportStatus(ctx, &rpc.ReportStatusRequest{
		Scenario: id.Scenario,
		Model:    id.Model,
		Node:     id.Node,
		Current:  current,
		Err:      errMsg,
	})
	return err
}
