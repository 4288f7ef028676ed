// refactorlens ranks refactoring opportunities across multi-language
// repositories. This binary is a thin shell around internal/pipeline: it
// loads configuration, feeds pre-parsed collaborator inputs in, and prints
// the result. All algorithmic work lives in internal/.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sibyllinesoft/refactorlens/internal/config"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/pack"
	"github.com/sibyllinesoft/refactorlens/internal/pipeline"
	"github.com/sibyllinesoft/refactorlens/internal/version"
)

const (
	exitOK             = 0
	exitConfigError    = 1
	exitPartialFailure = 2
	exitFatal          = 3
)

func main() {
	app := &cli.App{
		Name:                   "refactorlens",
		Usage:                  "Rank refactoring opportunities across multi-language repositories",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Analyze a repository snapshot and print ranked entities and impact packs",
				ArgsUsage: "[roots...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Config file path",
						Value:   ".refactorlens.kdl",
					},
					&cli.StringSliceFlag{
						Name:  "include",
						Usage: "Include files matching glob patterns (e.g. --include 'src/**/*.py')",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "Exclude files matching glob patterns",
					},
					&cli.StringSliceFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Restrict analysis to these language tags",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of top-ranked entities to report",
					},
					&cli.StringFlag{
						Name:  "clones",
						Usage: "Path to pre-computed clone groups (JSON)",
					},
					&cli.StringFlag{
						Name:  "coverage",
						Usage: "Path to pre-parsed coverage report (JSON)",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(c *cli.Context) error {
					fmt.Printf("refactorlens %s\n", version.Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfigError)
	}

	opts := pipeline.Options{Config: cfg}
	if path := c.String("clones"); path != "" {
		groups, err := loadCloneGroups(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitFatal)
		}
		opts.CloneGroups = groups
	}
	coveragePath := c.String("coverage")
	if coveragePath == "" {
		coveragePath = cfg.Coverage.ReportPath
	}
	if coveragePath != "" {
		report, err := loadCoverageReport(coveragePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitFatal)
		}
		opts.Coverage = report
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline.RegisterLanguages()
	result, err := pipeline.Analyze(ctx, opts)
	if err != nil {
		var cfgErr *errs.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitConfigError)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}

	printResult(result)
	if result.PartialFailure {
		os.Exit(exitPartialFailure)
	}
	return nil
}

// loadConfigWithOverrides loads the KDL config file and applies CLI flag
// overrides on top.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if roots := c.Args().Slice(); len(roots) > 0 {
		cfg.Roots = roots
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if langs := c.StringSlice("language"); len(langs) > 0 {
		cfg.Languages = langs
	}
	if top := c.Int("top"); top > 0 {
		cfg.TopK = top
	}
	return cfg, nil
}

func loadCloneGroups(path string) ([]pack.CloneGroup, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clone groups from %s: %w", path, err)
	}
	var groups []pack.CloneGroup
	if err := json.Unmarshal(content, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode clone groups from %s: %w", path, err)
	}
	return groups, nil
}

func loadCoverageReport(path string) (*pack.CoverageReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage report from %s: %w", path, err)
	}
	var report pack.CoverageReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to decode coverage report from %s: %w", path, err)
	}
	return &report, nil
}

func printResult(r *pipeline.Result) {
	header := color.New(color.FgCyan, color.Bold)
	scoreColor := color.New(color.FgYellow)

	header.Printf("refactorlens run %s\n", r.RunID)
	fmt.Printf("%d files, %d entities, %s\n\n", r.FileCount, r.EntityCount, r.Elapsed.Round(time.Millisecond))

	if len(r.TopEntities) > 0 {
		header.Println("Top entities")
		for i, e := range r.TopEntities {
			fmt.Printf("%3d. ", i+1)
			scoreColor.Printf("%.3f", e.Score)
			fmt.Printf("  %-8s %s\n", e.Kind, e.ID)
		}
		fmt.Println()
	}

	if len(r.Packs) > 0 {
		header.Println("Impact packs")
		for _, p := range r.Packs {
			fmt.Printf("- [%s] %s (value/effort %.2f)\n", p.Kind, p.ID, pack.Ratio(p))
			for _, step := range p.Steps {
				fmt.Printf("    %s\n", step)
			}
		}
		fmt.Println()
	}

	summary := r.Diagnostics.Summary()
	if errCount := len(r.Diagnostics.BySeverity()[errs.SeverityError]); errCount > 0 {
		color.New(color.FgRed).Printf("diagnostics: %s\n", summary)
	} else {
		fmt.Printf("diagnostics: %s\n", summary)
	}
}
