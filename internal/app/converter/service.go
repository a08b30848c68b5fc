// Package converter runs conversions against the live configuration and
// records their outcome.
package converter

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/internal/infra/config"
	"github.com/coachpo/baseconv/internal/infra/telemetry"
	"github.com/coachpo/baseconv/pkg/convert"
)

// Surfaces label where a conversion was requested from.
const (
	SurfaceCLI   = "cli"
	SurfaceHTTP  = "http"
	SurfaceBatch = "batch"
)

// SettingsSource supplies the configuration a conversion reads at entry.
type SettingsSource interface {
	Snapshot() config.AppConfig
}

// Request describes a single conversion. Nil overrides fall back to the
// configured conversion settings.
type Request struct {
	From       int    `json:"from"`
	To         int    `json:"to"`
	Number     Number `json:"number"`
	Precision  *int   `json:"precision,omitempty"`
	StripZeros *bool  `json:"stripZeros,omitempty"`
}

// Number is the number string of a request. In JSON it may also be given as a
// bare number, which is rendered in plain base-10 notation.
type Number string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*n = Number(text)
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return errs.New("converter", errs.CodeUnsupportedNumber,
			errs.WithInput(raw),
			errs.WithMessage("number must be a string or a JSON number"),
			errs.WithCause(err),
			errs.WithHTTP(http.StatusUnprocessableEntity))
	}
	text, err := convert.FormatValue(d)
	if err != nil {
		return err
	}
	*n = Number(text)
	return nil
}

// Result is the outcome of a successful conversion.
type Result struct {
	Value     string `json:"value"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Input     string `json:"input"`
	Path      string `json:"path"`
	Precision int    `json:"precision"`
}

// Service converts numbers using settings read once per call.
type Service struct {
	settings SettingsSource
	logger   *log.Logger
	notices  *log.Logger
	surface  string
	clock    func() time.Time

	conversionsCounter metric.Int64Counter
	errorsCounter      metric.Int64Counter
	durationHistogram  metric.Float64Histogram
}

// Option configures optional service behaviour.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotices sends accuracy notices to logger instead of the service logger.
func WithNotices(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.notices = logger
		}
	}
}

// WithSurface labels metrics with the calling entrypoint.
func WithSurface(surface string) Option {
	return func(s *Service) {
		if surface != "" {
			s.surface = surface
		}
	}
}

// WithMeter records metrics on the supplied meter instead of the global one.
func WithMeter(meter metric.Meter) Option {
	return func(s *Service) {
		if meter != nil {
			s.initMetrics(meter)
		}
	}
}

// NewService builds a conversion service reading settings from source.
func NewService(source SettingsSource, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("converter: settings source required")
	}
	svc := &Service{
		settings: source,
		logger:   log.New(os.Stdout, "converter ", log.LstdFlags|log.Lmicroseconds),
		surface:  SurfaceCLI,
		clock:    time.Now,
	}
	svc.initMetrics(otel.Meter("app.converter"))
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	if svc.notices == nil {
		svc.notices = svc.logger
	}
	return svc, nil
}

func (s *Service) initMetrics(meter metric.Meter) {
	s.conversionsCounter, _ = meter.Int64Counter("baseconv.conversions",
		metric.WithDescription("Number of completed conversions"),
		metric.WithUnit("{conversion}"))
	s.errorsCounter, _ = meter.Int64Counter("baseconv.conversion.errors",
		metric.WithDescription("Number of rejected conversions by error code"),
		metric.WithUnit("{error}"))
	s.durationHistogram, _ = meter.Float64Histogram(telemetry.ConversionDurationMetric,
		metric.WithDescription("Conversion duration"),
		metric.WithUnit("ms"))
}

// Settings returns the configuration snapshot currently in effect.
func (s *Service) Settings() config.AppConfig {
	return s.settings.Snapshot()
}

// Convert performs one conversion.
func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Unavailable("convert", err)
	}
	return s.convert(ctx, s.settings.Snapshot(), s.surface, req)
}

func (s *Service) convert(ctx context.Context, cfg config.AppConfig, surface string, req Request) (Result, error) {
	opts, err := s.options(cfg, req)
	if err != nil {
		s.recordError(ctx, cfg, surface, err)
		return Result{}, err
	}
	if opts.Precision > config.PrecisionWarnThreshold {
		s.notices.Printf("precision %d exceeds %d digits; trailing digits are rounding artefacts of the source value",
			opts.Precision, config.PrecisionWarnThreshold)
	}

	start := s.clock()
	value, err := convert.Convert(req.From, req.To, string(req.Number), opts)
	elapsed := s.clock().Sub(start)
	if err != nil {
		s.recordError(ctx, cfg, surface, err)
		return Result{}, err
	}

	path := string(convert.Route(req.From, req.To))
	attrs := metric.WithAttributes(telemetry.ConversionAttributes(string(cfg.Environment), surface, path, req.From, req.To)...)
	if s.conversionsCounter != nil {
		s.conversionsCounter.Add(ctx, 1, attrs)
	}
	if s.durationHistogram != nil {
		s.durationHistogram.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}

	return Result{
		Value:     value,
		From:      req.From,
		To:        req.To,
		Input:     string(req.Number),
		Path:      path,
		Precision: opts.Precision,
	}, nil
}

func (s *Service) options(cfg config.AppConfig, req Request) (convert.Options, error) {
	opts := cfg.Conversion.Options()
	if req.Precision != nil {
		opts.Precision = *req.Precision
	}
	if req.StripZeros != nil {
		opts.StripZeros = *req.StripZeros
	}
	if err := convert.Validate(req.From, req.To, opts.Precision); err != nil {
		return convert.Options{}, err
	}
	if limit := cfg.Conversion.MaxPrecision; limit > 0 && opts.Precision > limit {
		return convert.Options{}, errs.InvalidPrecision(opts.Precision,
			fmt.Sprintf("precision must be <= %d", limit))
	}
	return opts, nil
}

func (s *Service) recordError(ctx context.Context, cfg config.AppConfig, surface string, err error) {
	code := string(errs.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	s.logger.Printf("conversion rejected: %v", err)
	if s.errorsCounter != nil {
		s.errorsCounter.Add(ctx, 1, metric.WithAttributes(
			telemetry.ErrorAttributes(string(cfg.Environment), surface, code)...))
	}
}
