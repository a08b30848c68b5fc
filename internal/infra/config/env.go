package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvVarEnvironment = "BASECONV_ENV"
	EnvVarStripZeros  = "BASECONV_STRIP_ZEROS"
	EnvVarPrecision   = "BASECONV_PRECISION"
	EnvVarAPIAddr     = "BASECONV_API_ADDR"
)

// ApplyEnv overrides cfg from environment variables. Unparseable values are ignored.
func ApplyEnv(cfg AppConfig) AppConfig {
	return applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg AppConfig, getenv func(string) string) AppConfig {
	if env := strings.TrimSpace(getenv(EnvVarEnvironment)); env != "" {
		cfg.Environment = Environment(strings.ToLower(env))
	}
	if v := strings.TrimSpace(getenv(EnvVarStripZeros)); v != "" {
		if on, err := ParseSwitch(v); err == nil {
			cfg.Conversion.StripZeros = NewSwitch(on)
		}
	}
	if v := strings.TrimSpace(getenv(EnvVarPrecision)); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Conversion.Precision = p
		}
	}
	if v := strings.TrimSpace(getenv(EnvVarAPIAddr)); v != "" {
		cfg.APIServer.Addr = v
	}
	cfg.Normalise()
	return cfg
}
