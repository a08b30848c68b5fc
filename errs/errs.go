// Package errs provides structured error types and helpers for baseconv.
package errs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Code identifies a conversion error category.
type Code string

const (
	// CodeInvalidBase indicates a base argument outside [2, 36].
	CodeInvalidBase Code = "invalid_base"
	// CodeMalformedNumber indicates input that does not match the number grammar.
	CodeMalformedNumber Code = "malformed_number"
	// CodeInvalidDigit indicates a digit whose value is not less than its base.
	CodeInvalidDigit Code = "invalid_digit"
	// CodeUnsupportedNumber indicates a value the converter cannot represent as a number string.
	CodeUnsupportedNumber Code = "unsupported_number"
	// CodeInvalidPrecision indicates a negative or excessive fractional precision.
	CodeInvalidPrecision Code = "invalid_precision"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeUnavailable indicates the service is temporarily unavailable.
	CodeUnavailable Code = "unavailable"
)

// E captures structured error information produced across the baseconv stack.
type E struct {
	Op      string
	Code    Code
	Message string
	Input   string
	Digit   string
	Base    int
	HTTP    int

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and error code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:   strings.TrimSpace(op),
		Code: code,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithInput records the offending input string.
func WithInput(input string) Option {
	return func(e *E) {
		e.Input = input
	}
}

// WithDigit records the offending digit.
func WithDigit(digit string) Option {
	return func(e *E) {
		e.Digit = digit
	}
}

// WithBase records the base the failure relates to.
func WithBase(base int) Option {
	return func(e *E) {
		e.Base = base
	}
}

// WithHTTP records the HTTP status code the error maps to.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	op := strings.TrimSpace(e.Op)
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Base != 0 {
		parts = append(parts, "base="+strconv.Itoa(e.Base))
	}
	if e.Digit != "" {
		parts = append(parts, "digit="+strconv.Quote(e.Digit))
	}
	if e.Input != "" {
		parts = append(parts, "input="+strconv.Quote(e.Input))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// HasCode reports whether err wraps an envelope carrying the given code.
func HasCode(err error, code Code) bool {
	var e *E
	if !errors.As(err, &e) || e == nil {
		return false
	}
	return e.Code == code
}

// CodeOf extracts the envelope code from err, or "" when err is not an envelope.
func CodeOf(err error) Code {
	var e *E
	if !errors.As(err, &e) || e == nil {
		return ""
	}
	return e.Code
}

// InvalidBase returns a standardized error for a base outside [2, 36].
// The role names which argument was rejected (e.g. "from", "to").
func InvalidBase(role string, base int) *E {
	role = strings.TrimSpace(role)
	msg := "base must be in [2, 36]"
	if role != "" {
		msg = role + " " + msg
	}
	return New("convert", CodeInvalidBase, WithBase(base), WithMessage(msg), WithHTTP(http.StatusBadRequest))
}

// MalformedNumber returns a standardized error for input outside the number grammar.
func MalformedNumber(input string) *E {
	return New("numeral", CodeMalformedNumber,
		WithInput(input),
		WithMessage("number must match [+-]digits[.digits]"),
		WithHTTP(http.StatusUnprocessableEntity),
	)
}

// InvalidDigit returns a standardized error for a digit not valid in base.
func InvalidDigit(digit string, base int, input string) *E {
	return New("convert", CodeInvalidDigit,
		WithDigit(digit),
		WithBase(base),
		WithInput(input),
		WithMessage("digit value is not less than base"),
		WithHTTP(http.StatusUnprocessableEntity),
	)
}

// UnsupportedNumber returns a standardized error for values that have no number string form.
func UnsupportedNumber(input, reason string) *E {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "this type of number is not supported"
	}
	return New("convert", CodeUnsupportedNumber, WithInput(input), WithMessage(reason),
		WithHTTP(http.StatusUnprocessableEntity))
}

// InvalidPrecision returns a standardized error for an unusable precision.
func InvalidPrecision(precision int, reason string) *E {
	return New("convert", CodeInvalidPrecision,
		WithInput(strconv.Itoa(precision)),
		WithMessage(reason),
		WithHTTP(http.StatusBadRequest),
	)
}

// Unavailable wraps a cancellation or deadline error that stopped a conversion.
func Unavailable(op string, cause error) *E {
	msg := "conversion aborted"
	if cause != nil {
		msg = cause.Error()
	}
	return New(op, CodeUnavailable,
		WithMessage(msg),
		WithCause(cause),
		WithHTTP(http.StatusServiceUnavailable),
	)
}
