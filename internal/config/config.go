// Package config loads and validates duststorm's startup configuration:
// listener addresses, the users file, enabled auth methods, the initial
// relay buffer size, and logging. Grounded on the teacher's pkg/config
// layering (file -> env -> defaults -> validate), trimmed to the settings
// this server actually needs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is duststorm's full startup configuration.
//
// Precedence (highest to lowest): environment variables (DUSTSTORM_*),
// configuration file, defaults. An environment variable only takes effect
// for a key the loaded configuration file sets; with no file, the defaults
// are used as they are. There are no per-setting CLI flags.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Socks5Addrs are the initial SOCKS5 listener addresses (host:port).
	Socks5Addrs []string `mapstructure:"socks5_addrs" yaml:"socks5_addrs"`

	// SandstormAddrs are the initial Sandstorm admin listener addresses.
	SandstormAddrs []string `mapstructure:"sandstorm_addrs" yaml:"sandstorm_addrs"`

	// UsersFile is the path to the users file (internal/users file format).
	// If it does not exist, it is created with the Bootstrap admin user.
	UsersFile string `mapstructure:"users_file" validate:"required" yaml:"users_file"`

	// Bootstrap configures the initial admin user created when UsersFile
	// does not yet exist.
	Bootstrap BootstrapConfig `mapstructure:"bootstrap" yaml:"bootstrap"`

	// Auth controls which SOCKS5 negotiation methods are accepted.
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// BufferSize is the initial per-session relay buffer size, in bytes.
	BufferSize uint32 `mapstructure:"buffer_size" validate:"required,gt=0" yaml:"buffer_size"`

	// Metrics configures the optional Prometheus debug listener.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsConfig controls the optional /metrics HTTP debug endpoint. Empty
// ListenAddr (the default) leaves it disabled.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// BootstrapConfig seeds the first admin user when the users file does not
// exist.
type BootstrapConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// AuthConfig toggles the two SOCKS5 negotiation methods this server
// supports (spec §4.2/§6).
type AuthConfig struct {
	NoAuth   bool `mapstructure:"no_auth" yaml:"no_auth"`
	UserPass bool `mapstructure:"user_pass" yaml:"user_pass"`
}

var validate = validator.New()

// Validate runs struct-tag validation and the cross-field checks the tags
// can't express (at least one listener address, at least one auth method).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if len(cfg.Socks5Addrs) == 0 && len(cfg.SandstormAddrs) == 0 {
		return fmt.Errorf("config: at least one socks5 or sandstorm listener address is required")
	}
	if !cfg.Auth.NoAuth && !cfg.Auth.UserPass {
		return fmt.Errorf("config: at least one auth method (no_auth, user_pass) must be enabled")
	}
	return nil
}

// Load starts from DefaultConfig, overlays the configuration file when one
// is found (DUSTSTORM_* environment variables override the keys that file
// sets), then applies defaults and validates. A missing file leaves the
// defaults in place.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if found {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("DUSTSTORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "duststorm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "duststorm")
}

// DefaultConfigPath returns where Load looks when configPath is empty.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}
