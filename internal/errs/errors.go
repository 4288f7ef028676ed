// Package errs defines the typed error kinds used across the analysis
// pipeline: each kind
// carries operation context and wraps an underlying cause.
package errs

import (
	"fmt"
	"time"
)

// Kind classifies an error for the purpose of run-level propagation policy.
type Kind string

const (
	KindConfig                Kind = "config"
	KindParse                 Kind = "parse"
	KindLanguageNotSupported  Kind = "language_not_supported"
	KindFeatureExtraction     Kind = "feature_extraction"
	KindCache                 Kind = "cache"
)

// ConfigError is fatal: invalid configuration or a missing required root.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %q): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// ParseError records that a single file failed to parse; the file is
// skipped and the run continues.
type ParseError struct {
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

func NewParseError(path string, line, column int, err error) *ParseError {
	return &ParseError{FilePath: path, Line: line, Column: column, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// LanguageNotSupportedError reports that no adapter exists for a requested
// language. Whether it is fatal depends on whether any other enabled
// language is supported; the pipeline decides this when it resolves the
// enabled languages.
type LanguageNotSupportedError struct {
	Language string
}

func (e *LanguageNotSupportedError) Error() string {
	return fmt.Sprintf("no adapter registered for language %q", e.Language)
}

// FeatureExtractionError records that one feature failed for one entity;
// the extractor's default value is substituted and the run continues.
type FeatureExtractionError struct {
	Extractor  string
	Feature    string
	EntityID   string
	Underlying error
}

func NewFeatureExtractionError(extractor, feature, entityID string, err error) *FeatureExtractionError {
	return &FeatureExtractionError{Extractor: extractor, Feature: feature, EntityID: entityID, Underlying: err}
}

func (e *FeatureExtractionError) Error() string {
	return fmt.Sprintf("feature %s/%s failed for %s: %v", e.Extractor, e.Feature, e.EntityID, e.Underlying)
}

func (e *FeatureExtractionError) Unwrap() error { return e.Underlying }

// CacheError marks cache corruption; the cache is bypassed and the run
// continues with a warning.
type CacheError struct {
	Operation  string
	Underlying error
}

func NewCacheError(op string, err error) *CacheError {
	return &CacheError{Operation: op, Underlying: err}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed: %v", e.Operation, e.Underlying)
}

func (e *CacheError) Unwrap() error { return e.Underlying }

// Severity buckets diagnostics for reporting: errors, warnings, info.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is one recorded, non-fatal event surfaced in the analysis
// result: a failed file parse, an unavailable adapter, a substituted
// feature default, a bypassed cache.
type Diagnostic struct {
	Severity  Severity
	Kind      Kind
	FilePath  string
	Message   string
	Timestamp time.Time
}

// Diagnostics accumulates diagnostics across a run and groups them by
// severity for the result envelope.
type Diagnostics struct {
	items []Diagnostic
}

func (d *Diagnostics) Add(sev Severity, kind Kind, filePath, message string) {
	d.items = append(d.items, Diagnostic{Severity: sev, Kind: kind, FilePath: filePath, Message: message, Timestamp: time.Now()})
}

func (d *Diagnostics) Error(kind Kind, filePath, message string) {
	d.Add(SeverityError, kind, filePath, message)
}

func (d *Diagnostics) Warning(kind Kind, filePath, message string) {
	d.Add(SeverityWarning, kind, filePath, message)
}

func (d *Diagnostics) Info(kind Kind, filePath, message string) {
	d.Add(SeverityInfo, kind, filePath, message)
}

// All returns every diagnostic recorded so far, in insertion order.
func (d *Diagnostics) All() []Diagnostic { return d.items }

// BySeverity groups diagnostics by severity for the output envelope.
func (d *Diagnostics) BySeverity() map[Severity][]Diagnostic {
	out := map[Severity][]Diagnostic{}
	for _, item := range d.items {
		out[item.Severity] = append(out[item.Severity], item)
	}
	return out
}

// Summary reports the count of diagnostics per severity as a single line.
func (d *Diagnostics) Summary() string {
	counts := map[Severity]int{}
	for _, item := range d.items {
		counts[item.Severity]++
	}
	return fmt.Sprintf("%d errors, %d warnings, %d info",
		counts[SeverityError], counts[SeverityWarning], counts[SeverityInfo])
}
