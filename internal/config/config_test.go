package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "switchscope.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
controller:
  url: https://10.0.0.1
  token: secret-token
  insecure_tls: true
cache:
  response_ttl: 90s
  max_entries: 50
rate_limit:
  min_interval: 5s
probe:
  ssh:
    enabled: true
    username: admin
    password: hunter2
server:
  addr: ":9090"
`)

	cfg, loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded path = %q, want %q", loaded, path)
	}

	if cfg.Controller.URL != "https://10.0.0.1" || !cfg.Controller.InsecureTLS {
		t.Errorf("controller section wrong: %+v", cfg.Controller)
	}
	if cfg.Cache.ResponseTTL.Duration() != 90*time.Second {
		t.Errorf("ResponseTTL = %v, want 90s", cfg.Cache.ResponseTTL.Duration())
	}
	if cfg.Cache.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50", cfg.Cache.MaxEntries)
	}
	if cfg.RateLimit.MinInterval.Duration() != 5*time.Second {
		t.Errorf("MinInterval = %v, want 5s", cfg.RateLimit.MinInterval.Duration())
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadFromPathAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "controller:\n  url: https://10.0.0.1\n")

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Cache.ResponseTTL.Duration() != 60*time.Second {
		t.Errorf("default ResponseTTL = %v, want 60s", cfg.Cache.ResponseTTL.Duration())
	}
	if cfg.Cache.MaxEntries != 100 {
		t.Errorf("default MaxEntries = %d, want 100", cfg.Cache.MaxEntries)
	}
	if cfg.RateLimit.MinInterval.Duration() != 2*time.Second {
		t.Errorf("default MinInterval = %v, want 2s", cfg.RateLimit.MinInterval.Duration())
	}
	if cfg.RateLimit.RetryAfter.Duration() != 30*time.Second {
		t.Errorf("default RetryAfter = %v, want 30s", cfg.RateLimit.RetryAfter.Duration())
	}
	if cfg.Probe.SSH.Port != 22 {
		t.Errorf("default SSH port = %d, want 22", cfg.Probe.SSH.Port)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadFromPathMissingControllerURL(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: ':9090'\n")
	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected an error without controller.url")
	}
}

func TestLoadFromPathSSHProbeNeedsUsername(t *testing.T) {
	path := writeConfig(t, `
controller:
  url: https://10.0.0.1
probe:
  ssh:
    enabled: true
    password: hunter2
`)
	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected an error for an SSH probe without a username")
	}
}

func TestLoadFromPathBadYAML(t *testing.T) {
	path := writeConfig(t, "controller: [not a mapping\n")
	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestTokenEnvOverride(t *testing.T) {
	path := writeConfig(t, "controller:\n  url: https://10.0.0.1\n  token: from-file\n")
	t.Setenv(EnvToken, "from-env")

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Controller.Token != "from-env" {
		t.Errorf("Token = %q, want the environment override", cfg.Controller.Token)
	}
}

func TestFindConfigPathEnvOverride(t *testing.T) {
	path := writeConfig(t, "controller:\n  url: https://10.0.0.1\n")
	t.Setenv(EnvConfigPath, path)

	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath = %q, want %q", got, path)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	if err := d.UnmarshalYAML(func(v interface{}) error {
		*(v.(*string)) = "2m30s"
		return nil
	}); err != nil {
		t.Fatalf("UnmarshalYAML: %v", err)
	}
	if d.Duration() != 2*time.Minute+30*time.Second {
		t.Errorf("parsed = %v, want 2m30s", d.Duration())
	}

	out, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	if out != "2m30s" {
		t.Errorf("marshaled = %v, want 2m30s", out)
	}
}
