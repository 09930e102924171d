package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"purebreed/internal/metrics"
	"purebreed/internal/population"
	"purebreed/internal/report"
	api "purebreed/pkg/purebreed"
)

const artifactsDir = "runs"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "enumerate":
		return runEnumerate(ctx, args[1:])
	case "recommend":
		return runRecommend(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "stats":
		return runStats(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runEnumerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enumerate", flag.ContinueOnError)
	maleFlag := fs.String("male", "", "comma separated male trait values")
	femaleFlag := fs.String("female", "", "comma separated female trait values")
	distinct := fs.Bool("distinct", false, "merge identical offspring vectors")
	target := fs.Int("target", 0, "score the pair against this trait value")
	format := fs.String("format", "", "output format: text|json|yaml (default text on a terminal, json otherwise)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := visited(fs)

	male, err := parseTraits(*maleFlag)
	if err != nil {
		return fmt.Errorf("male: %w", err)
	}
	female, err := parseTraits(*femaleFlag)
	if err != nil {
		return fmt.Errorf("female: %w", err)
	}
	out, err := outputFormat(*format)
	if err != nil {
		return err
	}

	req := api.EnumerateRequest{Male: male, Female: female}
	if *distinct {
		req.Distribution = "distinct"
	}
	if setFlags["target"] {
		req.Target = target
	}

	client, err := api.New(api.Options{})
	if err != nil {
		return err
	}
	e, err := client.Enumerate(ctx, req)
	if err != nil {
		return err
	}
	if out == report.FormatText {
		return report.WriteEnumerationText(os.Stdout, e)
	}
	return report.Encode(os.Stdout, out, e)
}

func runRecommend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional recommend config path (yaml or json)")
	populationPath := fs.String("population", "", "population file: .csv|.yaml|.yml|.json")
	target := fs.Int("target", 0, "target trait value")
	limit := fs.Int("cap", 3, "maximum females recommended per male")
	workers := fs.Int("workers", 1, "parallel pair scoring workers")
	distribution := fs.String("distribution", "branch", "offspring distribution: branch|distinct")
	wAverage := fs.Float64("w-average", 0.4, "composite weight for average purity")
	wMax := fs.Float64("w-max", 0.3, "composite weight for max purity")
	wHigh := fs.Float64("w-high", 0.2, "composite weight for high purity ratio")
	wPerfect := fs.Float64("w-perfect", 0.1, "composite weight for perfect ratio")
	highThreshold := fs.Float64("high-threshold", 2.0/3.0, "purity at or above which offspring count as high purity")
	format := fs.String("format", "", "output format: text|json|yaml (default text on a terminal, json otherwise)")
	outDir := fs.String("out", "", "write config.json and result.json under this directory")
	metricsFile := fs.String("metrics-file", "", "write run metrics in prometheus text format to this path")
	logLevel := fs.String("log-level", "warn", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := visited(fs)

	opts, err := loadOrDefaultRecommendOptions(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		opts = recommendOptions{
			Request: api.RecommendRequest{
				PopulationPath: *populationPath,
				Target:         *target,
				Cap:            *limit,
				Workers:        *workers,
				Distribution:   *distribution,
				Weights: api.Weights{
					Average:    *wAverage,
					Max:        *wMax,
					HighPurity: *wHigh,
					Perfect:    *wPerfect,
				},
				HighPurityThreshold: *highThreshold,
			},
			HasTarget:   setFlags["target"],
			Format:      *format,
			OutDir:      *outDir,
			MetricsFile: *metricsFile,
			LogLevel:    *logLevel,
		}
	} else {
		err := overrideFromFlags(&opts, setFlags, map[string]any{
			"population":     *populationPath,
			"target":         *target,
			"cap":            *limit,
			"workers":        *workers,
			"distribution":   *distribution,
			"w-average":      *wAverage,
			"w-max":          *wMax,
			"w-high":         *wHigh,
			"w-perfect":      *wPerfect,
			"high-threshold": *highThreshold,
			"format":         *format,
			"out":            *outDir,
			"metrics-file":   *metricsFile,
			"log-level":      *logLevel,
		})
		if err != nil {
			return err
		}
	}
	if opts.Request.PopulationPath == "" {
		return errors.New("recommend requires -population")
	}
	if !opts.HasTarget {
		return errors.New("recommend requires -target")
	}
	out, err := outputFormat(opts.Format)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, opts.LogLevel)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	clientOpts := api.Options{Logger: logger, Registerer: registry}
	if opts.OutDir != "" {
		clientOpts.ArtifactsDir = opts.OutDir
		opts.Request.SaveArtifacts = true
	}
	client, err := api.New(clientOpts)
	if err != nil {
		return err
	}

	summary, err := client.Recommend(ctx, opts.Request)
	if err != nil {
		return err
	}
	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if out != report.FormatText {
		return report.Encode(os.Stdout, out, summary.Result)
	}
	if err := report.WriteText(os.Stdout, summary.Result); err != nil {
		return err
	}
	if summary.ArtifactsDir != "" {
		fmt.Printf("\nartifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	}
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	males := fs.Int("males", 50, "number of males")
	females := fs.Int("females", 50, "number of females")
	loci := fs.Int("loci", 3, "trait loci per organism")
	minValue := fs.Int("min", 1, "smallest trait value")
	maxValue := fs.Int("max", 100, "largest trait value")
	seed := fs.Int64("seed", 1, "rng seed")
	outPath := fs.String("out", "", "population file to write (.csv|.yaml|.yml|.json); stdout when empty")
	format := fs.String("format", "csv", "stdout format when -out is empty: csv|yaml|json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{})
	if err != nil {
		return err
	}
	organisms, err := client.GeneratePopulation(ctx, api.GenerateRequest{
		Males:   *males,
		Females: *females,
		Loci:    *loci,
		Min:     *minValue,
		Max:     *maxValue,
		Seed:    *seed,
		OutPath: *outPath,
	})
	if err != nil {
		return err
	}
	if *outPath == "" {
		return population.Write(os.Stdout, *format, organisms)
	}
	fmt.Printf("generated organisms=%d males=%d females=%d loci=%d path=%s\n", len(organisms), *males, *females, *loci, *outPath)
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	populationPath := fs.String("population", "", "population file: .csv|.yaml|.yml|.json")
	target := fs.Int("target", 0, "target trait value")
	format := fs.String("format", "", "output format: text|json|yaml (default text on a terminal, json otherwise)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *populationPath == "" {
		return errors.New("stats requires -population")
	}
	if !visited(fs)["target"] {
		return errors.New("stats requires -target")
	}
	out, err := outputFormat(*format)
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{})
	if err != nil {
		return err
	}
	organisms, err := client.LoadPopulation(ctx, *populationPath)
	if err != nil {
		return err
	}
	d := client.Distribution(ctx, organisms, *target)
	if out == report.FormatText {
		return report.WriteDistributionText(os.Stdout, d)
	}
	return report.Encode(os.Stdout, out, d)
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to show")
	dir := fs.String("dir", artifactsDir, "artifacts directory the run was written to")
	format := fs.String("format", "", "output format: text|json|yaml (default text on a terminal, json otherwise)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	out, err := outputFormat(*format)
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{ArtifactsDir: *dir})
	if err != nil {
		return err
	}
	result, err := client.Run(ctx, *runID)
	if err != nil {
		return err
	}
	if out == report.FormatText {
		return report.WriteText(os.Stdout, result)
	}
	return report.Encode(os.Stdout, out, result)
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func parseTraits(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{}, nil
	}
	parts := strings.Split(raw, ",")
	traits := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid trait value %q", p)
		}
		traits = append(traits, v)
	}
	return traits, nil
}

// outputFormat resolves an empty format to text on a terminal and json when
// stdout is piped.
func outputFormat(name string) (report.Format, error) {
	if name == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return report.FormatText, nil
		}
		return report.FormatJSON, nil
	}
	return report.ParseFormat(name)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: purebreedctl <enumerate|recommend|generate|stats|show> [flags]", msg)
}
