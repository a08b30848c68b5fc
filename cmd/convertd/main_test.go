package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/baseconv/internal/app/converter"
	"github.com/coachpo/baseconv/internal/infra/config"
)

func TestResolveConfigPathDefaults(t *testing.T) {
	require.Equal(t, "config/baseconv.yaml", resolveConfigPath(""))
	require.Equal(t, "/etc/baseconv.yaml", resolveConfigPath("/etc/baseconv.yaml"))
}

func TestOpenConfigStoreKeepsEnvOverridesOffDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiServer:\n  addr: \":8890\"\nconversion:\n  precision: 6\n"), 0o600))
	t.Setenv(config.EnvVarAPIAddr, "127.0.0.1:9999")
	t.Setenv(config.EnvVarPrecision, "12")
	t.Setenv(config.EnvVarEnvironment, "dev")

	store, loaded, err := openConfigStore(context.Background(), path)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "127.0.0.1:9999", store.Snapshot().APIServer.Addr)
	require.Equal(t, 12, store.Snapshot().Conversion.Precision)

	off := false
	_, err = store.UpdateConversion(config.ConversionUpdate{StripZeros: &off})
	require.NoError(t, err)

	saved, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, ":8890", saved.APIServer.Addr)
	require.Equal(t, 6, saved.Conversion.Precision)
	require.Equal(t, config.EnvProd, saved.Environment)
	require.False(t, saved.Conversion.StripZeros.Enabled(true))
}

func TestBuildAPIServerServesConversions(t *testing.T) {
	store, err := config.NewStore(config.Default(), nil)
	require.NoError(t, err)
	quiet := log.New(&bytes.Buffer{}, "", 0)
	svc, err := converter.NewService(store, converter.WithLogger(quiet))
	require.NoError(t, err)

	server, err := buildAPIServer(config.APIServerConfig{Addr: ":0"}, svc, store, quiet)
	require.NoError(t, err)
	require.Equal(t, ":0", server.Addr)
	require.Equal(t, apiReadHeaderTimeout, server.ReadHeaderTimeout)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"from":10,"to":2,"number":"6"}`))
	server.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"value":"110"`)
}

func TestInitTelemetryDisabled(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := log.New(buf, "", 0)

	provider, err := initTelemetry(context.Background(), logger, config.EnvDev, config.TelemetryConfig{EnableMetrics: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())
	require.Contains(t, buf.String(), "telemetry disabled")
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestPerformGracefulShutdownRunsSteps(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := log.New(buf, "", 0)

	server := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	var lifecycle conc.WaitGroup
	lifecycle.Go(func() { <-ctx.Done() })

	performGracefulShutdown(context.Background(), logger, gracefulShutdownConfig{
		server:     server,
		mainCancel: cancel,
		lifecycle:  &lifecycle,
	})

	out := buf.String()
	require.Contains(t, out, "shutdown: stopping api server completed")
	require.Contains(t, out, "shutdown: cancelling main context")
	require.Contains(t, out, "shutdown: waiting for lifecycle goroutines completed")
	require.True(t, errors.Is(ctx.Err(), context.Canceled))
}
