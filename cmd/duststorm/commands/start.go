package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duststorm/duststorm/internal/config"
	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/logger"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/sandstorm"
	"github.com/duststorm/duststorm/internal/socks5"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownGrace = 10 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the duststorm server",
	Long: `Start the duststorm SOCKS5 proxy and Sandstorm administration socket.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/duststorm/config.yaml.

Examples:
  # Start with the default or discovered config file
  duststorm start

  # Start with an explicit config file
  duststorm start --config /etc/duststorm/config.yaml

  # Override a setting from the config file via environment variable
  DUSTSTORM_LOGGING_LEVEL=DEBUG duststorm start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	store, createdAdmin, err := loadOrBootstrapUsers(cfg)
	if err != nil {
		return fmt.Errorf("failed to load users file: %w", err)
	}
	if createdAdmin {
		logger.Info("bootstrap admin user created", logger.Username(cfg.Bootstrap.Username))
		fmt.Printf("\n*** Bootstrap admin user %q created with the configured password ***\n", cfg.Bootstrap.Username)
		fmt.Println("Edit the users file or use duststormctl to change it.")
		fmt.Println()
	}

	bus := events.NewBus()
	met := metrics.New()
	mux := netmux.New()

	socksServer := socks5.NewServer(nil, store, bus)
	sandstormServer := sandstorm.NewServer(nil, store, bus)

	actor := controlplane.New(controlplane.Options{
		Users:             store,
		Metrics:           met,
		Bus:               bus,
		Mux:               mux,
		SocksHandler:      socksServer.Handler(),
		SandstormHandler:  sandstormServer.Handler(),
		InitialBufferSize: cfg.BufferSize,
		EnabledAuthMethods: map[events.AuthMethod]bool{
			events.AuthNoAuth:   cfg.Auth.NoAuth,
			events.AuthUserPass: cfg.Auth.UserPass,
		},
	})
	socksServer.BindActor(actor)
	sandstormServer.BindActor(actor)
	go actor.Run()

	var metricsSrv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.RegisterCollectors(reg, met)
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: metricsMux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", logger.Err(err))
			}
		}()
		logger.Info("metrics listener bound", logger.ListenAddr(cfg.Metrics.ListenAddr))
	}

	for _, addr := range cfg.Socks5Addrs {
		bound, err := actor.AddSocket(events.SocketSocks5, addr)
		if err != nil {
			return fmt.Errorf("failed to bind socks5 listener %s: %w", addr, err)
		}
		logger.Info("socks5 listener bound", logger.ListenAddr(bound))
	}
	for _, addr := range cfg.SandstormAddrs {
		bound, err := actor.AddSocket(events.SocketSandstorm, addr)
		if err != nil {
			return fmt.Errorf("failed to bind sandstorm listener %s: %w", addr, err)
		}
		logger.Info("sandstorm listener bound", logger.ListenAddr(bound))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("duststorm is running. Press Ctrl+C to stop.")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received, initiating graceful shutdown")

	actor.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := mux.Shutdown(ctx); err != nil {
		logger.Warn("not every session drained before shutdown deadline", logger.Err(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Warn("metrics listener did not shut down cleanly", logger.Err(err))
		}
	}

	if err := saveUsers(cfg.UsersFile, store); err != nil {
		logger.Error("failed to persist users file", logger.Err(err))
		return err
	}

	logger.Info("duststorm stopped gracefully")
	return nil
}
