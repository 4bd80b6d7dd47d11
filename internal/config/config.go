// Package config resolves the benchmark settings from the environment,
// an optional config file, and hard-coded defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys understood by the resolver.
const (
	KeyServiceName      = "SERVICE_NAME"
	KeyBaseURL          = "BASE_URL"
	KeyVUs              = "VUS"
	KeyDuration         = "DURATION"
	KeyWarmupIterations = "WARMUP_ITERATIONS"
	KeyDatabaseType     = "DATABASE_TYPE"
	KeyOutputDir        = "OUTPUT_DIR"
	KeyStepPause        = "STEP_PAUSE"
)

// Defaults applied when neither the environment nor the config file
// provides a value.
const (
	DefaultServiceName  = "bookcatalog-nd-app"
	DefaultBaseURL      = "http://localhost:8080/api/books"
	DefaultVUs          = 1
	DefaultDuration     = 30 * time.Second
	DefaultWarmup       = 0
	DefaultDatabaseType = "sqlite"
	DefaultOutputDir    = "."
	DefaultStepPause    = 100 * time.Millisecond
)

// Settings is the immutable configuration for one benchmark run.
// It is resolved once and shared read-only by every component.
type Settings struct {
	// ServiceName is sent as the X-Service-Name header on every request.
	ServiceName string

	// BaseURL is the collection endpoint of the service under test.
	BaseURL string

	// VUs is the number of concurrent virtual users. Always >= 1.
	VUs int

	// Duration is the length of the measurement window.
	Duration time.Duration

	// WarmupIterations is the number of workload cycles executed before
	// the measurement window opens. Zero disables the warmup phase.
	WarmupIterations int

	// DatabaseType is a free-form backend label used only for report naming.
	DatabaseType string

	// OutputDir is where the CSV report is written.
	OutputDir string

	// StepPause is the fixed delay between consecutive CRUD steps.
	StepPause time.Duration
}

// Resolve builds Settings from the environment and an optional config file.
//
// Precedence per key: environment variable (if present and non-empty),
// then the file value, then the default. A missing or unreadable file is
// not an error; a malformed numeric or duration value is, so that a bad
// concurrency or duration fails the run before any request is issued.
func Resolve(path string) (*Settings, error) {
	fileVals, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileVals[key]
	}

	s := &Settings{
		ServiceName:  stringValue(lookup(KeyServiceName), DefaultServiceName),
		BaseURL:      stringValue(lookup(KeyBaseURL), DefaultBaseURL),
		DatabaseType: stringValue(lookup(KeyDatabaseType), DefaultDatabaseType),
		OutputDir:    stringValue(lookup(KeyOutputDir), DefaultOutputDir),
	}

	if s.VUs, err = intValue(KeyVUs, lookup(KeyVUs), DefaultVUs); err != nil {
		return nil, err
	}
	if s.WarmupIterations, err = intValue(KeyWarmupIterations, lookup(KeyWarmupIterations), DefaultWarmup); err != nil {
		return nil, err
	}
	if s.Duration, err = durationValue(KeyDuration, lookup(KeyDuration), DefaultDuration); err != nil {
		return nil, err
	}
	if s.StepPause, err = durationValue(KeyStepPause, lookup(KeyStepPause), DefaultStepPause); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the invariants a resolved Settings must satisfy.
func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("%s cannot be empty", KeyBaseURL)
	}
	if s.VUs < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyVUs, s.VUs)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%s must be a positive duration, got %s", KeyDuration, s.Duration)
	}
	if s.WarmupIterations < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", KeyWarmupIterations, s.WarmupIterations)
	}
	if s.StepPause < 0 {
		return fmt.Errorf("%s cannot be negative, got %s", KeyStepPause, s.StepPause)
	}
	return nil
}

// loadFile reads the optional config file. Files ending in .yaml or .yml
// are parsed as a flat string map; everything else is parsed as
// line-oriented KEY=VALUE. A missing or unreadable file yields an empty map.
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		vals := make(map[string]string)
		if err := yaml.Unmarshal(data, &vals); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		return vals, nil
	}

	return parseEnvFile(string(data)), nil
}

// parseEnvFile parses line-oriented KEY=VALUE content. Blank lines and
// lines starting with # are ignored; surrounding quotes are stripped.
func parseEnvFile(content string) map[string]string {
	vals := make(map[string]string)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if key != "" {
			vals[key] = value
		}
	}

	return vals
}

func stringValue(raw, def string) string {
	if raw == "" {
		return def
	}
	return raw
}

func intValue(key, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q is not an integer", key, raw)
	}
	return n, nil
}

func durationValue(key, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q is not a duration: %w", key, raw, err)
	}
	return d, nil
}
