// Package config loads the single settings document (yaml_storage,
// piccolo_cloud, host, guest[]) plus the per-component environment
// overrides (HOST_IP, *_PORT).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NodeSpec is one entry of the host or guest[] list.
type NodeSpec struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
	Type string `yaml:"type"` // "bluechi" | "nodeagent"
}

// Settings is the parsed shape of the YAML settings document.
type Settings struct {
	YamlStorage  string     `yaml:"yaml_storage"`
	PiccoloCloud string     `yaml:"piccolo_cloud"`
	Host         NodeSpec   `yaml:"host"`
	Guest        []NodeSpec `yaml:"guest"`
}

// LoadSettings reads and parses the settings document at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

// Nodes returns host + guest as a single slice, host first.
func (s *Settings) Nodes() []NodeSpec {
	out := make([]NodeSpec, 0, len(s.Guest)+1)
	if s.Host.Name != "" {
		out = append(out, s.Host)
	}
	return append(out, s.Guest...)
}

// Config holds per-component runtime configuration, assembled from env
// vars with sensible defaults via the envStr/envInt/envBool layering
// below.
type Config struct {
	// HostIP holds HOST_IP (default 127.0.0.1). No component reads it:
	// node addresses come from the settings document alone.
	HostIP string

	// Ports, one per component.
	APIServerPort        int
	FilterGatewayPort    int
	ActionControllerPort int
	StateManagerPort     int
	NodeAgentPort        int

	// ReconcileInterval is T_reconcile, default 2s.
	ReconcileInterval int // seconds

	// UnhealthyAfter is T_unhealthy, default 30s.
	UnhealthyAfter int // seconds

	// RPCDeadlineSecs is the default outbound RPC timeout, default 5s.
	RPCDeadlineSecs int

	// ShutdownGraceSecs is the in-flight RPC abandonment grace window, default 3s.
	ShutdownGraceSecs int

	// SettingsPath points at the YAML settings document.
	SettingsPath string

	// PeerHost is the address split-deployment binaries dial the other
	// four components at (APIServer/FilterGateway/ActionController/
	// StateManager all share one control-plane host in this deployment
	// shape; only NodeAgent runs elsewhere, resolved per node via the
	// settings document instead).
	PeerHost string

	// PolicyManagerAddr is the external PolicyManager's gRPC address.
	// Empty means no PolicyManager is configured — ActionController
	// falls back to policy.AllowAll.
	PolicyManagerAddr string

	// KVBackend selects the contracts.KVStore implementation: "memory"
	// (default, all-in-one/dev) or "postgres" (split deployment).
	KVBackend string

	// PostgresURL is the connection string used when KVBackend is
	// "postgres".
	PostgresURL string

	// OTEL
	TelemetryEnabled bool
	OTLPEndpoint     string
	ServiceName      string
}

// Load reads configuration from environment variables.
func Load(serviceName string) *Config {
	return &Config{
		HostIP:               envStr("HOST_IP", "127.0.0.1"),
		APIServerPort:        envInt("APISERVER_PORT", 47099),
		FilterGatewayPort:    envInt("FILTERGATEWAY_PORT", 47002),
		ActionControllerPort: envInt("ACTIONCONTROLLER_PORT", 47001),
		StateManagerPort:     envInt("STATEMANAGER_PORT", 47003),
		NodeAgentPort:        envInt("NODEAGENT_PORT", 47098),
		ReconcileInterval:    envInt("RECONCILE_INTERVAL_SECS", 2),
		UnhealthyAfter:       envInt("UNHEALTHY_AFTER_SECS", 30),
		RPCDeadlineSecs:      envInt("RPC_DEADLINE_SECS", 5),
		ShutdownGraceSecs:    envInt("SHUTDOWN_GRACE_SECS", 3),
		SettingsPath:         envStr("PICCOLO_SETTINGS_PATH", "settings.yaml"),
		PeerHost:             envStr("PICCOLO_PEER_HOST", "127.0.0.1"),
		PolicyManagerAddr:    envStr("PICCOLO_POLICY_ADDR", ""),
		KVBackend:            envStr("PICCOLO_KV_BACKEND", "memory"),
		PostgresURL:          envStr("PICCOLO_POSTGRES_URL", ""),
		TelemetryEnabled:     envBool("OTEL_ENABLED", false),
		OTLPEndpoint:         envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:          envStr("OTEL_SERVICE_NAME", serviceName),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
