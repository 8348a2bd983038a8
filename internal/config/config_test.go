package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp moves the test into a fresh temp dir so cwd-relative config
// lookups see a known-empty directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
	})
	return tmpDir
}

func TestLoadNoConfigFoundUsesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("REDLINE_CONFIG_FILE", "")
	// Keep the user config dir lookup inside the sandbox too.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := LoadWithPath("")
	if err != nil {
		t.Fatalf("LoadWithPath returned error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path when defaults are used, got %q", path)
	}
	want := Default()
	if cfg != want {
		t.Errorf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "redline.yaml")
	cfgData := `workspace: /srv/project
history:
  path: state/history.db
server:
  address: "0.0.0.0:9000"
shell:
  timeout: 30s
`
	if err := os.WriteFile(cfgPath, []byte(cfgData), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, path, err := LoadWithPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadWithPath returned error: %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.Workspace != "/srv/project" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "/srv/project")
	}
	if cfg.History.Path != "state/history.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "state/history.db")
	}
	if cfg.Server.Address != "0.0.0.0:9000" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, "0.0.0.0:9000")
	}
	if got := cfg.ShellTimeout(); got != 30*time.Second {
		t.Errorf("ShellTimeout() = %v, want %v", got, 30*time.Second)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "redline.yaml")
	if err := os.WriteFile(cfgPath, []byte("workspace: ./code\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Workspace != "./code" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "./code")
	}
	if cfg.History.Path != ".redline.db" {
		t.Errorf("History.Path = %q, want default %q", cfg.History.Path, ".redline.db")
	}
	if cfg.Server.Address != "127.0.0.1:8787" {
		t.Errorf("Server.Address = %q, want default %q", cfg.Server.Address, "127.0.0.1:8787")
	}
	if cfg.Shell.Timeout != "2m" {
		t.Errorf("Shell.Timeout = %q, want default %q", cfg.Shell.Timeout, "2m")
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadCurrentDirectoryConfig(t *testing.T) {
	tmpDir := chdirTemp(t)
	t.Setenv("REDLINE_CONFIG_FILE", "")
	cfgData := "shell:\n  timeout: 10s\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".redline.yaml"), []byte(cfgData), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, path, err := LoadWithPath("")
	if err != nil {
		t.Fatalf("LoadWithPath returned error: %v", err)
	}
	if path != ".redline.yaml" {
		t.Errorf("resolved path = %q, want %q", path, ".redline.yaml")
	}
	if cfg.Shell.Timeout != "10s" {
		t.Errorf("Shell.Timeout = %q, want %q", cfg.Shell.Timeout, "10s")
	}
}

func TestLoadEnvVarConfigFile(t *testing.T) {
	chdirTemp(t)
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("workspace: /tmp/w\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("REDLINE_CONFIG_FILE", cfgPath)

	cfg, path, err := LoadWithPath("")
	if err != nil {
		t.Fatalf("LoadWithPath returned error: %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.Workspace != "/tmp/w" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "/tmp/w")
	}
}

func TestLoadEnvVarConfigFileMissing(t *testing.T) {
	chdirTemp(t)
	t.Setenv("REDLINE_CONFIG_FILE", filepath.Join(t.TempDir(), "gone.yaml"))

	_, _, err := LoadWithPath("")
	if err == nil {
		t.Fatal("expected error when REDLINE_CONFIG_FILE points to a missing file")
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("REDLINE_TEST_WORKSPACE", "/data/repos")
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "redline.yaml")
	if err := os.WriteFile(cfgPath, []byte("workspace: ${REDLINE_TEST_WORKSPACE}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Workspace != "/data/repos" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "/data/repos")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "redline.yaml")
	if err := os.WriteFile(cfgPath, []byte("workspace: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("parse failure must not be reported as config-not-found")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty workspace",
			mutate:  func(c *Config) { c.Workspace = "" },
			wantErr: true,
		},
		{
			name:    "empty history path",
			mutate:  func(c *Config) { c.History.Path = "" },
			wantErr: true,
		},
		{
			name: "empty history path allowed when disabled",
			mutate: func(c *Config) {
				c.History.Path = ""
				c.History.Disabled = true
			},
			wantErr: false,
		},
		{
			name:    "empty server address",
			mutate:  func(c *Config) { c.Server.Address = "" },
			wantErr: true,
		},
		{
			name:    "bad shell timeout",
			mutate:  func(c *Config) { c.Shell.Timeout = "five minutes" },
			wantErr: true,
		},
		{
			name:    "negative shell timeout",
			mutate:  func(c *Config) { c.Shell.Timeout = "-5s" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
