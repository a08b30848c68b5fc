package converter

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/internal/infra/config"
)

type staticSource struct {
	mu  sync.Mutex
	cfg config.AppConfig
}

func (s *staticSource) Snapshot() config.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func newTestService(t *testing.T, cfg config.AppConfig, opts ...Option) (*Service, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	base := []Option{
		WithLogger(log.New(&buf, "", 0)),
		WithMeter(provider.Meter("test")),
	}
	svc, err := NewService(&staticSource{cfg: cfg}, append(base, opts...)...)
	require.NoError(t, err)
	return svc, reader, &buf
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func sumCounter(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewServiceRequiresSource(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestConvertUsesConfiguredDefaults(t *testing.T) {
	svc, reader, _ := newTestService(t, config.Default())

	res, err := svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "10.5"})
	require.NoError(t, err)
	require.Equal(t, "1010.1", res.Value)
	require.Equal(t, "from_base10", res.Path)
	require.Equal(t, 6, res.Precision)
	require.Equal(t, int64(1), sumCounter(t, reader, "baseconv.conversions"))
}

func TestConvertHonoursOverrides(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default())

	res, err := svc.Convert(context.Background(), Request{
		From: 10, To: 2, Number: "0.5",
		Precision:  intPtr(4),
		StripZeros: boolPtr(false),
	})
	require.NoError(t, err)
	require.Equal(t, "0.1000", res.Value)
}

func TestConvertReadsStripSettingFromSnapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Conversion.StripZeros = config.NewSwitch(false)
	cfg.Conversion.Precision = 3
	svc, _, _ := newTestService(t, cfg)

	res, err := svc.Convert(context.Background(), Request{From: 2, To: 10, Number: "1.1"})
	require.NoError(t, err)
	require.Equal(t, "1.500", res.Value)
}

func TestConvertRejectsPrecisionAboveCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Conversion.MaxPrecision = 20
	svc, reader, logs := newTestService(t, cfg)

	_, err := svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "1", Precision: intPtr(21)})
	require.Error(t, err)
	require.True(t, errs.HasCode(err, errs.CodeInvalidPrecision))
	require.Equal(t, int64(1), sumCounter(t, reader, "baseconv.conversion.errors"))
	require.Contains(t, logs.String(), "conversion rejected")
}

func TestConvertWarnsOnHighPrecision(t *testing.T) {
	svc, _, logs := newTestService(t, config.Default())

	_, err := svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "0.1", Precision: intPtr(20)})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "precision 20 exceeds 10 digits")
}

func TestConvertReportsEngineErrors(t *testing.T) {
	svc, reader, _ := newTestService(t, config.Default())

	cases := []struct {
		req  Request
		code errs.Code
	}{
		{Request{From: 1, To: 10, Number: "1"}, errs.CodeInvalidBase},
		{Request{From: 10, To: 37, Number: "1"}, errs.CodeInvalidBase},
		{Request{From: 2, To: 10, Number: "102"}, errs.CodeInvalidDigit},
		{Request{From: 10, To: 2, Number: "1..2"}, errs.CodeMalformedNumber},
		{Request{From: 10, To: 2, Number: "1", Precision: intPtr(-1)}, errs.CodeInvalidPrecision},
	}
	for _, tc := range cases {
		_, err := svc.Convert(context.Background(), tc.req)
		if !errs.HasCode(err, tc.code) {
			t.Fatalf("request %+v: expected %s, got %v", tc.req, tc.code, err)
		}
	}
	require.Equal(t, int64(len(cases)), sumCounter(t, reader, "baseconv.conversion.errors"))
	require.Equal(t, int64(0), sumCounter(t, reader, "baseconv.conversions"))
}

func TestConvertHonoursCancelledContext(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Convert(ctx, Request{From: 10, To: 2, Number: "1"})
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, errs.HasCode(err, errs.CodeUnavailable))
}

func TestConvertWarnsOnlyAboveThreshold(t *testing.T) {
	svc, _, logs := newTestService(t, config.Default())

	_, err := svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "0.1", Precision: intPtr(10)})
	require.NoError(t, err)
	require.NotContains(t, logs.String(), "exceeds")

	_, err = svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "0.1", Precision: intPtr(11)})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "precision 11 exceeds 10 digits")
}

func TestConvertRoutesNoticesSeparately(t *testing.T) {
	var notices bytes.Buffer
	svc, _, logs := newTestService(t, config.Default(), WithNotices(log.New(&notices, "", 0)))

	_, err := svc.Convert(context.Background(), Request{From: 10, To: 2, Number: "0.1", Precision: intPtr(12)})
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), Request{From: 2, To: 10, Number: "2"})
	require.Error(t, err)

	require.Contains(t, notices.String(), "precision 12 exceeds 10 digits")
	require.NotContains(t, notices.String(), "conversion rejected")
	require.NotContains(t, logs.String(), "exceeds")
	require.Contains(t, logs.String(), "conversion rejected")
}

func TestRequestNumberDecodesStringsAndJSONNumbers(t *testing.T) {
	cases := map[string]Number{
		`{"from":10,"to":2,"number":"ff"}`:  "ff",
		`{"from":10,"to":2,"number":255}`:   "255",
		`{"from":10,"to":2,"number":-0.75}`: "-0.75",
		`{"from":10,"to":2,"number":1e3}`:   "1000",
	}
	for body, want := range cases {
		var req Request
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		require.Equal(t, want, req.Number, body)
	}
}

func TestConvertAcceptsDecodedJSONNumber(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default())
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"from":10,"to":16,"number":255.5}`), &req))

	res, err := svc.Convert(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "FF.8", res.Value)
	require.Equal(t, "255.5", res.Input)
}

func TestConvertNegativeFromHexadecimal(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default(), WithSurface(SurfaceHTTP))

	res, err := svc.Convert(context.Background(), Request{From: 16, To: 10, Number: "-ff.8"})
	require.NoError(t, err)
	if res.Value != "-255.5" {
		t.Fatalf("unexpected value %q", res.Value)
	}
	require.Equal(t, "to_base10", res.Path)
}
