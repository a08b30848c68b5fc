package config

import (
	"fmt"
	"sync"
)

// PersistFunc stores an accepted configuration.
type PersistFunc func(AppConfig) error

// Store provides concurrency-safe access to the application configuration.
// Readers take a Snapshot once per operation so a single call never observes
// a configuration change halfway through.
//
// The store tracks two views: the effective configuration served to readers
// and the file configuration handed to persist. Updates are applied to both,
// so environment overrides in the effective view never reach disk.
type Store struct {
	mu      sync.RWMutex
	cfg     AppConfig
	file    AppConfig
	persist PersistFunc
}

// StoreOption configures optional store behaviour.
type StoreOption func(*Store)

// WithFileConfig sets the configuration persist writes updates over. It
// defaults to the initial configuration.
func WithFileConfig(cfg AppConfig) StoreOption {
	return func(s *Store) {
		s.file = cfg
	}
}

// NewStore constructs a configuration store from the supplied initial configuration.
// persist may be nil.
func NewStore(initial AppConfig, persist PersistFunc, opts ...StoreOption) (*Store, error) {
	cfg := initial
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{cfg: cfg, file: cfg, persist: persist}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.file.Normalise()
	if err := s.file.Validate(); err != nil {
		return nil, fmt.Errorf("file config: %w", err)
	}
	return s, nil
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ConversionUpdate names the conversion and UI fields to change; nil fields are kept.
type ConversionUpdate struct {
	StripZeros  *bool
	Precision   *int
	AutoConvert *bool
}

// UpdateConversion applies a partial update to the conversion and UI sections.
// Only the named fields are written to the file configuration.
func (s *Store) UpdateConversion(update ConversionUpdate) (AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := update.apply(s.cfg)
	if err != nil {
		return AppConfig{}, err
	}
	file, err := update.apply(s.file)
	if err != nil {
		return AppConfig{}, fmt.Errorf("file config: %w", err)
	}
	if err := s.save(file); err != nil {
		return AppConfig{}, err
	}
	s.cfg = merged
	s.file = file
	return merged, nil
}

func (u ConversionUpdate) apply(cfg AppConfig) (AppConfig, error) {
	if u.StripZeros != nil {
		cfg.Conversion.StripZeros = NewSwitch(*u.StripZeros)
	}
	if u.Precision != nil {
		cfg.Conversion.Precision = *u.Precision
	}
	if u.AutoConvert != nil {
		cfg.UI.AutoConvert = NewSwitch(*u.AutoConvert)
	}
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (s *Store) save(cfg AppConfig) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(cfg); err != nil {
		return fmt.Errorf("persist config: %w", err)
	}
	return nil
}
