package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load("apiserver")
	if cfg.HostIP != "127.0.0.1" {
		t.Errorf("HostIP = %q, want 127.0.0.1 default", cfg.HostIP)
	}
	if cfg.APIServerPort != 47099 {
		t.Errorf("APIServerPort = %d, want 47099 default", cfg.APIServerPort)
	}
	if cfg.KVBackend != "memory" {
		t.Errorf("KVBackend = %q, want memory default", cfg.KVBackend)
	}
	if cfg.ServiceName != "apiserver" {
		t.Errorf("ServiceName = %q, want the passed serviceName as fallback", cfg.ServiceName)
	}
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	t.Setenv("HOST_IP", "10.0.0.5")
	t.Setenv("APISERVER_PORT", "9999")
	t.Setenv("PICCOLO_KV_BACKEND", "postgres")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := config.Load("apiserver")
	if cfg.HostIP != "10.0.0.5" {
		t.Errorf("HostIP = %q, want 10.0.0.5", cfg.HostIP)
	}
	if cfg.APIServerPort != 9999 {
		t.Errorf("APIServerPort = %d, want 9999", cfg.APIServerPort)
	}
	if cfg.KVBackend != "postgres" {
		t.Errorf("KVBackend = %q, want postgres", cfg.KVBackend)
	}
	if !cfg.TelemetryEnabled {
		t.Error("TelemetryEnabled = false, want true")
	}
}

func TestLoadMalformedIntEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("APISERVER_PORT", "not-a-number")
	cfg := config.Load("apiserver")
	if cfg.APIServerPort != 47099 {
		t.Errorf("APIServerPort = %d, want the 47099 default on a malformed override", cfg.APIServerPort)
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	yamlDoc := `yaml_storage: /var/lib/agentoven
piccolo_cloud: https://cloud.example.com
host:
  name: vehicle-host
  ip: 127.0.0.1
  type: bluechi
guest:
  - name: infotainment
    ip: 192.168.1.10
    type: nodeagent
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.Host.Name != "vehicle-host" {
		t.Errorf("Host.Name = %q, want vehicle-host", settings.Host.Name)
	}
	if len(settings.Guest) != 1 || settings.Guest[0].Name != "infotainment" {
		t.Errorf("Guest = %+v, want one infotainment entry", settings.Guest)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := config.LoadSettings("/nonexistent/settings.yaml"); err == nil {
		t.Error("LoadSettings() on a missing file should error")
	}
}

func TestSettingsNodesHostFirst(t *testing.T) {
	s := &config.Settings{
		Host:  config.NodeSpec{Name: "vehicle-host"},
		Guest: []config.NodeSpec{{Name: "infotainment"}, {Name: "cluster"}},
	}
	nodes := s.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("Nodes() = %d, want 3", len(nodes))
	}
	if nodes[0].Name != "vehicle-host" {
		t.Errorf("Nodes()[0] = %q, want vehicle-host first", nodes[0].Name)
	}
}

func TestSettingsNodesSkipsEmptyHost(t *testing.T) {
	s := &config.Settings{Guest: []config.NodeSpec{{Name: "infotainment"}}}
	nodes := s.Nodes()
	if len(nodes) != 1 || nodes[0].Name != "infotainment" {
		t.Errorf("Nodes() = %+v, want just the guest entry when host is unset", nodes)
	}
}
