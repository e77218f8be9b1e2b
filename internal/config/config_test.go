package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Server.Port != 8125 {
		t.Errorf("Default() Server.Port = %d, want %d", cfg.Server.Port, 8125)
	}
	if cfg.SQLite.Path != "assetwatch.db" {
		t.Errorf("Default() SQLite.Path = %q, want %q", cfg.SQLite.Path, "assetwatch.db")
	}
	if cfg.History.InitialWindow != 72*time.Hour {
		t.Errorf("Default() History.InitialWindow = %v, want %v", cfg.History.InitialWindow, 72*time.Hour)
	}
	if cfg.History.InitialDelay != 2200*time.Millisecond {
		t.Errorf("Default() History.InitialDelay = %v, want %v", cfg.History.InitialDelay, 2200*time.Millisecond)
	}
	if cfg.History.ChunkDelay != 4800*time.Millisecond {
		t.Errorf("Default() History.ChunkDelay = %v, want %v", cfg.History.ChunkDelay, 4800*time.Millisecond)
	}
	if cfg.History.MaxPoints != 1200 {
		t.Errorf("Default() History.MaxPoints = %d, want %d", cfg.History.MaxPoints, 1200)
	}
}

func TestEnvToKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SERVER_PORT", "server.port"},
		{"SQLITE_PATH", "sqlite.path"},
		{"LOGGING_DEBUG", "logging.debug"},
		{"ZABBIX_URL", "zabbix.url"},
		{"HISTORY_MAX_POINTS", "history.max.points"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := envToKey(tt.input)
			if got != tt.expected {
				t.Errorf("envToKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.toml"); err == nil {
		t.Error("Load() with a missing explicit config path should error")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	content := `
[server]
port = 9000

[sqlite]
path = "/tmp/test.db"

[zabbix]
url = "http://zabbix.local/api_jsonrpc.php"
username = "api"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Load() Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.SQLite.Path != "/tmp/test.db" {
		t.Errorf("Load() SQLite.Path = %q, want %q", cfg.SQLite.Path, "/tmp/test.db")
	}
	if cfg.Zabbix.URL != "http://zabbix.local/api_jsonrpc.php" {
		t.Errorf("Load() Zabbix.URL = %q", cfg.Zabbix.URL)
	}
	// Untouched keys keep their defaults.
	if cfg.History.MaxPoints != 1200 {
		t.Errorf("Load() History.MaxPoints = %d, want default %d", cfg.History.MaxPoints, 1200)
	}
}

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("ASSETWATCH_SERVER_PORT", "7777")
	t.Setenv("ASSETWATCH_ZABBIX_USERNAME", "env-user")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Load() Server.Port from env = %d, want %d", cfg.Server.Port, 7777)
	}
	if cfg.Zabbix.Username != "env-user" {
		t.Errorf("Load() Zabbix.Username from env = %q, want %q", cfg.Zabbix.Username, "env-user")
	}
}
