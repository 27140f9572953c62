package config

import "path/filepath"

// DefaultConfig returns a fully-populated Config with sensible defaults,
// used both as the Load fallback (no config file found) and as the base
// that file/env values are unmarshaled over.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Socks5Addrs:    []string{"127.0.0.1:1080"},
		SandstormAddrs: []string{"127.0.0.1:3390"},
		UsersFile:      filepathJoinDefault(),
		Bootstrap: BootstrapConfig{
			Username: "admin",
			Password: "admin",
		},
		Auth: AuthConfig{
			NoAuth:   true,
			UserPass: true,
		},
		BufferSize: 4096,
	}
}

// ApplyDefaults fills in zero-valued fields left unset after unmarshaling
// a partial configuration file, mirroring the teacher's zero-value
// backfill strategy.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.UsersFile == "" {
		cfg.UsersFile = filepathJoinDefault()
	}
	if cfg.Bootstrap.Username == "" {
		cfg.Bootstrap.Username = "admin"
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 4096
	}
}

func filepathJoinDefault() string {
	return filepath.Join(defaultConfigDir(), "users.txt")
}
