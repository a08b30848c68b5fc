package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunConvertsPositionalNumber(t *testing.T) {
	var out, errOut bytes.Buffer
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	code := run([]string{"-config", missing, "-from", "2", "-to", "10", "101.1"}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "5.5\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseconv.yaml")
	if err := os.WriteFile(path, []byte("conversion:\n  stripZeros: no\n  precision: 3\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out, errOut bytes.Buffer
	code := run([]string{"-config", path, "-from", "10", "-to", "2", "0.5"}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "0.100\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunExitCodes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	var out, errOut bytes.Buffer
	if code := run([]string{"-config", missing, "-from", "40", "1"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Fatalf("want usage exit code 2, got %d", code)
	}
	if code := run([]string{"-config", missing, "-from", "2", "2"}, strings.NewReader(""), &out, &errOut); code != 1 {
		t.Fatalf("want failure exit code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "invalid_digit") {
		t.Fatalf("expected digit error on stderr, got %q", errOut.String())
	}
}

func TestRunWarnsAboutHighPrecisionOnStderr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	var out, errOut bytes.Buffer
	code := run([]string{"-config", missing, "-from", "10", "-to", "2", "-precision", "12", "0.1"}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	if !strings.Contains(errOut.String(), "precision 12 exceeds 10 digits") {
		t.Fatalf("expected precision notice on stderr, got %q", errOut.String())
	}
	if strings.Contains(out.String(), "exceeds") {
		t.Fatalf("notice must not reach stdout: %q", out.String())
	}
}

func TestRunSkipsNoticeAtThreshold(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	var out, errOut bytes.Buffer
	code := run([]string{"-config", missing, "-from", "10", "-to", "2", "-precision", "10", "0.1"}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("expected quiet stderr, got %q", errOut.String())
	}
}
