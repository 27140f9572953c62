package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultConfigWhenFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.BufferSize != 4096 {
		t.Errorf("expected default buffer size 4096, got %d", cfg.BufferSize)
	}
	if len(cfg.Socks5Addrs) == 0 {
		t.Errorf("expected at least one default socks5 address")
	}
}

func TestLoadAppliesFileOverFileDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
logging:
  level: "DEBUG"
  format: "json"
  output: "stdout"
socks5_addrs:
  - "0.0.0.0:1080"
sandstorm_addrs:
  - "127.0.0.1:4000"
users_file: "` + filepath.ToSlash(filepath.Join(tmpDir, "users.txt")) + `"
buffer_size: 65536
auth:
  no_auth: false
  user_pass: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.BufferSize != 65536 {
		t.Errorf("expected buffer size 65536, got %d", cfg.BufferSize)
	}
	if cfg.Auth.NoAuth {
		t.Errorf("expected no_auth disabled by file")
	}
	if !cfg.Auth.UserPass {
		t.Errorf("expected user_pass enabled by file")
	}
}

func TestValidateRejectsNoListeners(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Socks5Addrs = nil
	cfg.SandstormAddrs = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error with no listener addresses")
	}
}

func TestValidateRejectsNoAuthMethods(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.NoAuth = false
	cfg.Auth.UserPass = false
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error with no auth methods enabled")
	}
}

func TestValidateRejectsZeroBufferSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error with zero buffer size")
	}
}
