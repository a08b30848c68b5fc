package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorFormattingIncludesBaseAndDigit(t *testing.T) {
	err := New(
		"convert",
		CodeInvalidDigit,
		WithBase(2),
		WithDigit("2"),
		WithInput("102"),
		WithMessage("digit value is not less than base"),
		WithCause(errors.New("scan failed")),
	)

	out := err.Error()
	if !strings.Contains(out, "op=convert") {
		t.Fatalf("expected op marker in error string: %s", out)
	}
	if !strings.Contains(out, "code=invalid_digit") {
		t.Fatalf("expected code in error string: %s", out)
	}
	if !strings.Contains(out, "base=2") {
		t.Fatalf("expected base in error string: %s", out)
	}
	if !strings.Contains(out, `digit="2"`) {
		t.Fatalf("expected digit in error string: %s", out)
	}
	if !strings.Contains(out, `input="102"`) {
		t.Fatalf("expected input in error string: %s", out)
	}
	if !strings.Contains(out, `cause="scan failed"`) {
		t.Fatalf("expected wrapped cause in error string: %s", out)
	}
}

func TestEmptyFieldsAreOmitted(t *testing.T) {
	out := New("", CodeInvalid).Error()
	if out != "op=unknown code=invalid_request" {
		t.Fatalf("unexpected minimal error string: %s", out)
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("convert request: %w", InvalidBase("to", 37))
	if !HasCode(wrapped, CodeInvalidBase) {
		t.Fatalf("expected invalid_base code through wrapping")
	}
	if HasCode(wrapped, CodeInvalidDigit) {
		t.Fatalf("did not expect invalid_digit code")
	}
	if HasCode(errors.New("plain"), CodeInvalidBase) {
		t.Fatalf("plain errors carry no code")
	}
	if got := CodeOf(wrapped); got != CodeInvalidBase {
		t.Fatalf("expected CodeOf to return invalid_base, got %q", got)
	}
}

func TestConstructors(t *testing.T) {
	base := InvalidBase("from", 1)
	if base.Base != 1 || !strings.Contains(base.Message, "from") {
		t.Fatalf("unexpected invalid base envelope: %+v", base)
	}
	if MalformedNumber("1..2").Input != "1..2" {
		t.Fatalf("malformed number should record input")
	}
	if UnsupportedNumber("x", "").Message == "" {
		t.Fatalf("unsupported number should default its message")
	}
	if InvalidPrecision(-1, "precision must be >= 0").Code != CodeInvalidPrecision {
		t.Fatalf("unexpected precision code")
	}
}

func TestConstructorsCarryHTTPStatus(t *testing.T) {
	cases := map[string]struct {
		err  *E
		want int
	}{
		"base":        {InvalidBase("to", 37), http.StatusBadRequest},
		"precision":   {InvalidPrecision(-1, "precision must be >= 0"), http.StatusBadRequest},
		"malformed":   {MalformedNumber("1..2"), http.StatusUnprocessableEntity},
		"digit":       {InvalidDigit("2", 2, "102"), http.StatusUnprocessableEntity},
		"unsupported": {UnsupportedNumber("NaN", "not a finite number"), http.StatusUnprocessableEntity},
		"unavailable": {Unavailable("convert", context.Canceled), http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		if tc.err.HTTP != tc.want {
			t.Fatalf("%s: expected HTTP %d, got %d", name, tc.want, tc.err.HTTP)
		}
	}
}

func TestUnavailableWrapsContextError(t *testing.T) {
	err := Unavailable("convert", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected errors.Is to reach the context error")
	}
	if err.Code != CodeUnavailable {
		t.Fatalf("unexpected code %q", err.Code)
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("root")
	err := New("config", CodeInvalid, WithCause(cause))
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
}

func TestNilErrorString(t *testing.T) {
	var e *E
	if got := e.Error(); got != "<nil>" {
		t.Fatalf("expected <nil> string for nil error, got %q", got)
	}
}
