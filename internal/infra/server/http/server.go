// Package httpserver exposes the conversion API over HTTP.
package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/internal/app/converter"
	"github.com/coachpo/baseconv/internal/infra/config"
	"github.com/coachpo/baseconv/internal/infra/telemetry"
)

const (
	maxJSONBodyBytes int64 = 1 << 20 // 1 MiB

	convertPath      = "/convert"
	convertBatchPath = "/convert/batch"
	configPath       = "/config"
	healthPath       = "/healthz"
	openAPISpecPath  = "/docs/openapi.json"

	requestIDHeader = "X-Request-ID"
)

type handlerFunc func(http.ResponseWriter, *http.Request)

// ConfigStore is the configuration surface the API reads and updates.
type ConfigStore interface {
	Snapshot() config.AppConfig
	UpdateConversion(update config.ConversionUpdate) (config.AppConfig, error)
}

type httpServer struct {
	converter *converter.Service
	store     ConfigStore
	logger    *log.Logger
	limiter   *rate.Limiter

	requestsCounter metric.Int64Counter
}

// Option configures optional handler behaviour.
type Option func(*httpServer)

// WithLogger overrides the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *httpServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLimiter overrides the limiter derived from the apiServer settings.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(s *httpServer) {
		s.limiter = limiter
	}
}

type convertResponse struct {
	ID     string            `json:"id"`
	Status string            `json:"status"`
	Result converter.Result `json:"result"`
}

type batchRequest struct {
	Items []converter.Request `json:"items"`
}

type batchItemResponse struct {
	Index  int               `json:"index"`
	Status string            `json:"status"`
	Result *converter.Result `json:"result,omitempty"`
	Error  *errorPayload     `json:"error,omitempty"`
}

type batchResponse struct {
	ID     string              `json:"id"`
	Status string              `json:"status"`
	Failed int                 `json:"failed"`
	Items  []batchItemResponse `json:"items"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Base    int    `json:"base,omitempty"`
	Digit   string `json:"digit,omitempty"`
	Input   string `json:"input,omitempty"`
}

type configPayload struct {
	StripZeros  *bool `json:"stripZeros,omitempty"`
	Precision   *int  `json:"precision,omitempty"`
	AutoConvert *bool `json:"autoConvert,omitempty"`
}

type configView struct {
	Environment  string `json:"environment"`
	StripZeros   bool   `json:"stripZeros"`
	Precision    int    `json:"precision"`
	MaxPrecision int    `json:"maxPrecision"`
	AutoConvert  bool   `json:"autoConvert"`
}

// NewHandler creates the HTTP handler serving conversion requests.
func NewHandler(svc *converter.Service, store ConfigStore, opts ...Option) (http.Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("converter service required")
	}
	if store == nil {
		return nil, fmt.Errorf("config store required")
	}
	server := &httpServer{
		converter: svc,
		store:     store,
		logger:    log.New(os.Stdout, "http ", log.LstdFlags|log.Lmicroseconds),
		limiter:   newLimiter(store.Snapshot().APIServer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(server)
		}
	}
	meter := otel.Meter("http.api")
	server.requestsCounter, _ = meter.Int64Counter("baseconv.http.requests",
		metric.WithDescription("Number of API requests by route and status class"),
		metric.WithUnit("{request}"))

	mux := http.NewServeMux()
	mux.Handle(convertPath, server.methodHandlers(convertPath, map[string]handlerFunc{
		http.MethodPost: server.convert,
	}))
	mux.Handle(convertBatchPath, server.methodHandlers(convertBatchPath, map[string]handlerFunc{
		http.MethodPost: server.convertBatch,
	}))
	mux.Handle(configPath, server.methodHandlers(configPath, map[string]handlerFunc{
		http.MethodGet: server.getConfig,
		http.MethodPut: server.updateConfig,
	}))
	mux.Handle(healthPath, server.methodHandlers(healthPath, map[string]handlerFunc{
		http.MethodGet: server.health,
	}))
	if store.Snapshot().Environment == config.EnvDev {
		mux.Handle(openAPISpecPath, http.HandlerFunc(server.serveOpenAPISpec))
	}

	return withCORS(server.withRequestID(mux)), nil
}

// newLimiter returns nil, meaning unlimited, when requestsPerSecond is zero.
func newLimiter(cfg config.APIServerConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

func (s *httpServer) methodHandlers(route string, handlers map[string]handlerFunc) http.Handler {
	allowed := allowedMethods(handlers)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer s.recordRequest(r, route, rec)

		if s.limiter != nil && !s.limiter.Allow() {
			rec.Header().Set("Retry-After", "1")
			writeError(rec, http.StatusTooManyRequests, string(errs.CodeUnavailable), "rate limit exceeded")
			return
		}
		if handler, ok := handlers[r.Method]; ok {
			handler(rec, r)
			return
		}
		methodNotAllowed(rec, allowed...)
	})
}

func allowedMethods(handlers map[string]handlerFunc) []string {
	if len(handlers) == 0 {
		return nil
	}
	allowed := make([]string, 0, len(handlers))
	for method := range handlers {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	return allowed
}

func (s *httpServer) recordRequest(r *http.Request, route string, rec *statusRecorder) {
	if s.requestsCounter != nil {
		env := string(s.store.Snapshot().Environment)
		s.requestsCounter.Add(r.Context(), 1, metric.WithAttributes(
			telemetry.RequestAttributes(env, route, rec.status)...))
	}
	if rec.status >= http.StatusInternalServerError {
		s.logger.Printf("%s %s -> %d id=%s", r.Method, route, rec.status, rec.Header().Get(requestIDHeader))
	}
}

func (s *httpServer) convert(w http.ResponseWriter, r *http.Request) {
	limitRequestBody(w, r)
	var req converter.Request
	if err := decodeJSON(r.Body, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	res, err := s.converter.Convert(r.Context(), req)
	if err != nil {
		writeConversionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		ID:     w.Header().Get(requestIDHeader),
		Status: "ok",
		Result: res,
	})
}

func (s *httpServer) convertBatch(w http.ResponseWriter, r *http.Request) {
	limitRequestBody(w, r)
	var req batchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, string(errs.CodeInvalid), "items required")
		return
	}
	if limit := s.store.Snapshot().APIServer.MaxBatchSize; len(req.Items) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, string(errs.CodeInvalid),
			fmt.Sprintf("batch of %d items exceeds limit %d", len(req.Items), limit))
		return
	}

	items := s.converter.ConvertBatch(r.Context(), req.Items)
	resp := batchResponse{
		ID:     w.Header().Get(requestIDHeader),
		Status: "ok",
		Failed: converter.Failed(items),
		Items:  make([]batchItemResponse, len(items)),
	}
	for i, item := range items {
		entry := batchItemResponse{Index: item.Index, Status: "ok"}
		if item.Err != nil {
			entry.Status = "error"
			payload := errorPayloadFrom(item.Err)
			entry.Error = &payload
		} else {
			result := item.Result
			entry.Result = &result
		}
		resp.Items[i] = entry
	}
	if resp.Failed > 0 {
		resp.Status = "partial"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *httpServer) getConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.store.Snapshot()))
}

func (s *httpServer) updateConfig(w http.ResponseWriter, r *http.Request) {
	limitRequestBody(w, r)
	var payload configPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}
	updated, err := s.store.UpdateConversion(config.ConversionUpdate{
		StripZeros:  payload.StripZeros,
		Precision:   payload.Precision,
		AutoConvert: payload.AutoConvert,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, string(errs.CodeInvalid), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(updated))
}

func (s *httpServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *httpServer) serveOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, openAPISpec)
}

func (s *httpServer) withRequestID(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		handler.ServeHTTP(w, r)
	})
}

func viewOf(cfg config.AppConfig) configView {
	return configView{
		Environment:  string(cfg.Environment),
		StripZeros:   cfg.Conversion.StripZeros.Enabled(true),
		Precision:    cfg.Conversion.Precision,
		MaxPrecision: cfg.Conversion.MaxPrecision,
		AutoConvert:  cfg.UI.AutoConvert.Enabled(true),
	}
}

func errorPayloadFrom(err error) errorPayload {
	var e *errs.E
	if errors.As(err, &e) && e != nil {
		return errorPayload{
			Code:    string(e.Code),
			Message: e.Message,
			Base:    e.Base,
			Digit:   e.Digit,
			Input:   e.Input,
		}
	}
	return errorPayload{Code: string(errs.CodeInvalid), Message: err.Error()}
}

// statusOf returns the status carried by the error envelope. Errors without
// one are server faults.
func statusOf(err error) int {
	var e *errs.E
	if errors.As(err, &e) && e != nil && e.HTTP != 0 {
		return e.HTTP
	}
	return http.StatusInternalServerError
}

func writeConversionError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]any{
		"id":     w.Header().Get(requestIDHeader),
		"status": "error",
		"error":  errorPayloadFrom(err),
	})
}

func decodeJSON(body io.Reader, dst any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func limitRequestBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var e *errs.E
	if errors.As(err, &e) && e != nil {
		writeConversionError(w, err)
		return
	}
	if isRequestTooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, string(errs.CodeInvalid), "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, string(errs.CodeInvalid), err.Error())
}

func isRequestTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, string(errs.CodeInvalid), "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"id":     w.Header().Get(requestIDHeader),
		"status": "error",
		"error":  errorPayload{Code: code, Message: message},
	})
}

func withCORS(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
