// Command convertd serves the base conversion HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/coachpo/baseconv/internal/app/converter"
	"github.com/coachpo/baseconv/internal/infra/config"
	httpserver "github.com/coachpo/baseconv/internal/infra/server/http"
	"github.com/coachpo/baseconv/internal/infra/telemetry"
)

const (
	defaultConfigPath        = "config/baseconv.yaml"
	convertdLoggerPrefix     = "convertd "
	shutdownTimeout          = 30 * time.Second
	apiServerShutdownTimeout = 5 * time.Second
	lifecycleShutdownTimeout = 10 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
	apiReadHeaderTimeout     = 5 * time.Second
	apiReadTimeout           = 15 * time.Second
	apiWriteTimeout          = 30 * time.Second
	apiIdleTimeout           = 60 * time.Second
)

func main() {
	cfgPathFlag := parseFlags()
	ctx, cancel := newSignalContext()
	defer cancel()

	logger := newConvertdLogger()

	configPath := resolveConfigPath(cfgPathFlag)

	store, loadedFromFile, err := openConfigStore(ctx, configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if !loadedFromFile {
		logger.Printf("configuration file not found, using defaults")
	}
	appCfg := store.Snapshot()
	logger.Printf("configuration initialised: env=%s, precision=%d, stripZeros=%t",
		appCfg.Environment, appCfg.Conversion.Precision, appCfg.Conversion.StripZeros.Enabled(true))

	telemetryProvider, err := initTelemetry(ctx, logger, appCfg.Environment, appCfg.Telemetry)
	if err != nil {
		logger.Fatalf("initialize telemetry: %v", err)
	}

	svc, err := converter.NewService(store,
		converter.WithLogger(logger),
		converter.WithSurface(converter.SurfaceHTTP),
		converter.WithMeter(telemetryProvider.Meter("app.converter")))
	if err != nil {
		logger.Fatalf("initialise converter: %v", err)
	}

	var lifecycle conc.WaitGroup

	apiServer, err := buildAPIServer(appCfg.APIServer, svc, store, logger)
	if err != nil {
		logger.Fatalf("initialise API server: %v", err)
	}
	startAPIServer(&lifecycle, logger, apiServer)
	logger.Printf("conversion API listening on %s", apiServer.Addr)

	logger.Print("convertd started; awaiting shutdown signal")
	<-ctx.Done()
	logger.Print("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownStart := time.Now()
	performGracefulShutdown(shutdownCtx, logger, gracefulShutdownConfig{
		server:     apiServer,
		mainCancel: cancel,
		lifecycle:  &lifecycle,
		telemetry:  telemetryProvider,
	})

	logger.Printf("shutdown completed in %v", time.Since(shutdownStart))
}

func parseFlags() string {
	cfgPath := flag.String("config", "", fmt.Sprintf("Path to application configuration file (default: %s)", defaultConfigPath))
	flag.Parse()
	return *cfgPath
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newConvertdLogger() *log.Logger {
	return log.New(os.Stdout, convertdLoggerPrefix, log.LstdFlags|log.Lmicroseconds)
}

func initTelemetry(ctx context.Context, logger *log.Logger, env config.Environment, cfg config.TelemetryConfig) (*telemetry.Provider, error) {
	telemetryCfg := telemetry.DefaultConfig()
	if cfg.OTLPEndpoint != "" {
		telemetryCfg.OTLPEndpoint = cfg.OTLPEndpoint
	}
	if cfg.ServiceName != "" {
		telemetryCfg.ServiceName = cfg.ServiceName
	}
	telemetryCfg.Environment = string(env)
	telemetryCfg.OTLPInsecure = cfg.OTLPInsecure
	telemetryCfg.EnableMetrics = cfg.EnableMetrics

	provider, err := telemetry.NewProvider(ctx, telemetryCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry provider: %w", err)
	}

	if provider.Enabled() {
		logger.Printf("telemetry initialized: endpoint=%s, service=%s", telemetryCfg.OTLPEndpoint, telemetryCfg.ServiceName)
	} else {
		logger.Printf("telemetry disabled")
	}
	return provider, nil
}

// openConfigStore loads configPath, overlays environment overrides and returns
// a store that writes accepted updates back over the file contents only.
func openConfigStore(ctx context.Context, configPath string) (*config.Store, bool, error) {
	fileCfg, loadedFromFile, err := config.LoadOrDefault(ctx, configPath)
	if err != nil {
		return nil, false, err
	}
	store, err := config.NewStore(config.ApplyEnv(fileCfg), func(cfg config.AppConfig) error {
		return config.SaveAppConfig(configPath, cfg)
	}, config.WithFileConfig(fileCfg))
	if err != nil {
		return nil, false, fmt.Errorf("initialise config store: %w", err)
	}
	return store, loadedFromFile, nil
}

func buildAPIServer(cfg config.APIServerConfig, svc *converter.Service, store *config.Store, logger *log.Logger) (*http.Server, error) {
	handler, err := httpserver.NewHandler(svc, store, httpserver.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: apiReadHeaderTimeout,
		ReadTimeout:       apiReadTimeout,
		WriteTimeout:      apiWriteTimeout,
		IdleTimeout:       apiIdleTimeout,
	}, nil
}

func startAPIServer(lifecycle *conc.WaitGroup, logger *log.Logger, server *http.Server) {
	lifecycle.Go(func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("api server: %v", err)
		}
	})
}

type gracefulShutdownConfig struct {
	server     *http.Server
	mainCancel context.CancelFunc
	lifecycle  *conc.WaitGroup
	telemetry  *telemetry.Provider
}

func performGracefulShutdown(ctx context.Context, logger *log.Logger, cfg gracefulShutdownConfig) {
	shutdownStep := func(name string, timeout time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.Printf("shutdown: %s...", name)
		if err := fn(stepCtx); err != nil {
			logger.Printf("shutdown: %s failed: %v", name, err)
		} else {
			logger.Printf("shutdown: %s completed", name)
		}
	}

	if cfg.server != nil {
		shutdownStep("stopping api server", apiServerShutdownTimeout, func(stepCtx context.Context) error {
			return cfg.server.Shutdown(stepCtx)
		})
	}

	logger.Print("shutdown: cancelling main context")
	if cfg.mainCancel != nil {
		cfg.mainCancel()
	}

	if cfg.lifecycle != nil {
		shutdownStep("waiting for lifecycle goroutines", lifecycleShutdownTimeout, func(stepCtx context.Context) error {
			done := make(chan struct{})
			go func() {
				cfg.lifecycle.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stepCtx.Done():
				return fmt.Errorf("timeout waiting for goroutines: %w", stepCtx.Err())
			}
		})
	}

	if cfg.telemetry != nil {
		shutdownStep("shutting down telemetry", telemetryShutdownTimeout, func(stepCtx context.Context) error {
			return cfg.telemetry.Shutdown(stepCtx)
		})
	}
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return filepath.Clean(defaultConfigPath)
}
