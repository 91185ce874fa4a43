// Command allinone runs all five orchestrator components
// (APIServer, FilterGateway, ActionController, StateManager, NodeAgent)
// in a single process, wired together with plain Go values instead of
// gRPC — the dev/test deployment shape, using the same structured-logging
// and graceful-shutdown pattern as the split-process entrypoints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/action"
	"github.com/agentoven/agentoven/control-plane/internal/apiserver"
	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/internal/config"
	"github.com/agentoven/agentoven/control-plane/internal/filter"
	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/internal/nodeagent"
	"github.com/agentoven/agentoven/control-plane/internal/policy"
	vsignal "github.com/agentoven/agentoven/control-plane/internal/signal"
	"github.com/agentoven/agentoven/control-plane/internal/state"
	"github.com/agentoven/agentoven/control-plane/internal/telemetry"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// managerProxy breaks the ActionController <-> StateManager construction
// cycle: Controller needs a StateApplier/StatusReporter before the
// Manager it will eventually point at exists, so the proxy is handed to
// Controller first and filled in once Manager is built.
type managerProxy struct {
	m *state.Manager
}

func (p *managerProxy) ApplyDesired(ctx context.Context, diff []models.WorkloadInstance) error {
	return p.m.ApplyDesired(ctx, diff)
}

func (p *managerProxy) ReportStatus(ctx context.Context, id models.InstanceID, current models.Status, errMsg string) error {
	return p.m.ReportStatus(ctx, id, current, errMsg)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load("piccolo-allinone")
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
		log.Warn().Err(err).Str("path", cfg.SettingsPath).Msg("no settings document found, routing to a single local node")
		settings = &config.Settings{Host: config.NodeSpec{Name: "local", IP: "127.0.0.1", Type: "nodeagent"}}
	}
	router := config.NewStaticRouter(settings, cfg.NodeAgentPort)

	bus := vsignal.NewMemoryBus()

	var policyClient contracts.PolicyClient = policy.AllowAll{}

	backend, err := nodeagent.NewBackend(settings.Host.Type, settings.Host.Name, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct node backend")
	}

	mgrProxy := &managerProxy{}
	dispatcher := nodeagent.NewDispatcher(backend, mgrProxy, settings.Host.Name)

	ctrl := action.NewController(kvStore, policyClient, router, mgrProxy, dispatcher)

	interval := time.Duration(cfg.ReconcileInterval) * time.Second
	unhealthy := time.Duration(cfg.UnhealthyAfter) * time.Second
	mgr := state.NewManager(kvStore, ctrl, interval, unhealthy)
	mgrProxy.m = mgr

	engine := filter.NewEngine(bus, ctrl)
	filterServer := filter.NewServer(kvStore, engine)

	artifactSvc := artifact.NewService(kvStore, filterServer)
	apiHandlers := apiserver.NewHandlers(artifactSvc)
	httpHandler := apiserver.NewRouter(cfg, apiHandlers)

	go mgr.Start(ctx)

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

	log.Info().Int("port", cfg.APIServerPort).Msg("piccolo all-in-one orchestrator ready")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
