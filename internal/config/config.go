// Package config owns the analysis configuration: the option surface,
// KDL file loading, and validation with aggregated field errors.
package config

import (
	"errors"
	"fmt"

	"github.com/sibyllinesoft/refactorlens/internal/errs"
)

// Granularity selects which entity kinds the ranking stage scores.
type Granularity string

const (
	GranularityFile     Granularity = "file"
	GranularityFunction Granularity = "function"
)

// Config is the full option surface for one analysis run.
type Config struct {
	Roots     []string
	Include   []string
	Exclude   []string
	Languages []string

	Granularity Granularity
	TopK        int
	Weights     map[string]float64
	Normalizer  string // minmax | robust | bayesian

	// DisabledExtractors lists extractor names (complexity, graph,
	// refactoring, clone) to skip; their features fall back to defaults.
	DisabledExtractors []string

	Packs     Packs
	Coverage  Coverage
	Structure Structure
}

// Packs configures the impact-pack builder.
type Packs struct {
	EnableClone      bool
	EnableCycle      bool
	EnableChokepoint bool
	EnableCoverage   bool
	EnableStructure  bool

	MaxPacks          int
	NonOverlap        bool
	CentralitySamples int

	Clone ClonePacks
}

// ClonePacks holds the clone-family thresholds.
type ClonePacks struct {
	MinSimilarity float64
	MinTotalLOC   int
	MaxParameters int
}

// Coverage points at the externally parsed coverage report.
type Coverage struct {
	ReportPath string
	FormatHint string
}

// Structure holds the structure-pack size thresholds.
type Structure struct {
	LargeFileLines int
	MaxFilesPerDir int
}

// Default returns a Config with every option at its documented default.
// Roots stays empty and must be supplied by the caller.
func Default() *Config {
	return &Config{
		Granularity: GranularityFunction,
		TopK:        50,
		Weights:     DefaultWeights(),
		Normalizer:  "bayesian",
		Packs: Packs{
			EnableClone:       true,
			EnableCycle:       true,
			EnableChokepoint:  true,
			EnableCoverage:    true,
			EnableStructure:   true,
			MaxPacks:          20,
			NonOverlap:        true,
			CentralitySamples: 64,
			Clone: ClonePacks{
				MinSimilarity: 0.85,
				MinTotalLOC:   60,
				MaxParameters: 6,
			},
		},
		Structure: Structure{
			LargeFileLines: 800,
			MaxFilesPerDir: 25,
		},
	}
}

// DefaultWeights is the composite-score weighting used when the config
// supplies none: complexity and smell signals dominate, with graph
// coupling and clone mass as secondary drivers.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"complexity.cyclomatic":           1.0,
		"complexity.cognitive":            1.0,
		"complexity.loc":                  0.5,
		"complexity.nesting":              0.5,
		"refactoring.long_method":         0.8,
		"refactoring.complex_conditional": 0.6,
		"refactoring.large_class":         0.6,
		"refactoring.parameter_bloat":     0.4,
		"refactoring.depth_bloat":         0.4,
		"graph.fan_in":                    0.5,
		"graph.betweenness":               0.5,
		"graph.in_scc":                    0.3,
		"clone.mass":                      0.7,
	}
}

// Validate checks the configuration and aggregates every violation into a
// single ConfigError.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Roots) == 0 {
		problems = append(problems, "roots: at least one root path is required")
	}
	switch c.Granularity {
	case GranularityFile, GranularityFunction:
	default:
		problems = append(problems, fmt.Sprintf("granularity: must be %q or %q, got %q", GranularityFile, GranularityFunction, c.Granularity))
	}
	if c.TopK < 0 {
		problems = append(problems, fmt.Sprintf("topK: must be non-negative, got %d", c.TopK))
	}
	switch c.Normalizer {
	case "minmax", "robust", "bayesian":
	default:
		problems = append(problems, fmt.Sprintf("normalizer: must be minmax, robust or bayesian, got %q", c.Normalizer))
	}
	for name, w := range c.Weights {
		if w < 0 {
			problems = append(problems, fmt.Sprintf("weights.%s: must be non-negative, got %g", name, w))
		}
	}
	if c.Packs.MaxPacks < 0 {
		problems = append(problems, fmt.Sprintf("packs.maxPacks: must be non-negative, got %d", c.Packs.MaxPacks))
	}
	if c.Packs.CentralitySamples < 0 {
		problems = append(problems, fmt.Sprintf("packs.centralitySamples: must be non-negative, got %d", c.Packs.CentralitySamples))
	}
	if s := c.Packs.Clone.MinSimilarity; s < 0 || s > 1 {
		problems = append(problems, fmt.Sprintf("packs.clone.minSimilarity: must lie in [0,1], got %g", s))
	}
	if c.Packs.Clone.MinTotalLOC < 0 {
		problems = append(problems, fmt.Sprintf("packs.clone.minTotalLoc: must be non-negative, got %d", c.Packs.Clone.MinTotalLOC))
	}
	if c.Packs.Clone.MaxParameters < 1 {
		problems = append(problems, fmt.Sprintf("packs.clone.maxParameters: must be at least 1, got %d", c.Packs.Clone.MaxParameters))
	}
	if c.Structure.LargeFileLines < 1 {
		problems = append(problems, fmt.Sprintf("structure.largeFileLines: must be positive, got %d", c.Structure.LargeFileLines))
	}
	if c.Structure.MaxFilesPerDir < 1 {
		problems = append(problems, fmt.Sprintf("structure.maxFilesPerDir: must be positive, got %d", c.Structure.MaxFilesPerDir))
	}

	if len(problems) == 0 {
		return nil
	}
	agg := problems[0]
	for _, p := range problems[1:] {
		agg += "; " + p
	}
	return errs.NewConfigError("config", "", errors.New(agg))
}
