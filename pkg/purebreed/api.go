package purebreed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"purebreed/internal/breeding"
	"purebreed/internal/genetics"
	"purebreed/internal/metrics"
	"purebreed/internal/model"
	"purebreed/internal/population"
	"purebreed/internal/report"
)

const defaultArtifactsDir = "runs"

type (
	Organism       = model.Organism
	Sex            = model.Sex
	Outcome        = model.Outcome
	PairScore      = model.PairScore
	Candidate      = model.Candidate
	Recommendation = model.Recommendation
	Result         = model.Result
	Weights        = genetics.Weights
	Enumeration    = report.Enumeration
)

const (
	Male   = model.Male
	Female = model.Female
)

type Options struct {
	ArtifactsDir string
	Logger       *slog.Logger
	// Registerer receives the run metrics. Nil keeps them on a private registry.
	// Clients sharing a Registerer share the same series.
	Registerer prometheus.Registerer
}

type Client struct {
	artifactsDir string
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type RecommendRequest struct {
	Population          []Organism
	PopulationPath      string
	Target              int
	Cap                 int
	Workers             int
	Distribution        string
	Weights             Weights
	HighPurityThreshold float64
	SaveArtifacts       bool
}

type RecommendSummary struct {
	RunID        string
	ArtifactsDir string
	Result       Result
}

type EnumerateRequest struct {
	Male         []int
	Female       []int
	Distribution string
	Target       *int
}

type GenerateRequest struct {
	Males   int
	Females int
	Loci    int
	Min     int
	Max     int
	Seed    int64
	OutPath string
}

func DefaultGenerateRequest() GenerateRequest {
	cfg := population.DefaultGenerateConfig()
	return GenerateRequest{
		Males:   cfg.Males,
		Females: cfg.Females,
		Loci:    cfg.Loci,
		Min:     cfg.Min,
		Max:     cfg.Max,
		Seed:    cfg.Seed,
	}
}

func DefaultWeights() Weights {
	return genetics.DefaultWeights()
}

func New(opts Options) (*Client, error) {
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		artifactsDir: artifactsDir,
		logger:       logger,
		metrics:      metrics.New(opts.Registerer),
	}, nil
}

// Recommend loads the population when only a path is given, runs the
// recommender and optionally stores the run under the artifacts directory.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (RecommendSummary, error) {
	organisms := req.Population
	if organisms == nil && req.PopulationPath != "" {
		loaded, err := population.Load(req.PopulationPath)
		if err != nil {
			return RecommendSummary{}, fmt.Errorf("load population: %w", err)
		}
		organisms = loaded
	}
	dist, err := genetics.ParseDistribution(req.Distribution)
	if err != nil {
		return RecommendSummary{}, err
	}

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	r, err := breeding.New(breeding.Config{
		Cap:                 req.Cap,
		Workers:             req.Workers,
		Distribution:        dist,
		Weights:             req.Weights,
		HighPurityThreshold: req.HighPurityThreshold,
	}, breeding.WithLogger(logger), breeding.WithMetrics(c.metrics))
	if err != nil {
		return RecommendSummary{}, err
	}

	result, err := r.Recommend(ctx, organisms, req.Target)
	if err != nil {
		return RecommendSummary{}, err
	}
	result.RunID = runID

	summary := RecommendSummary{RunID: runID, Result: result}
	if !req.SaveArtifacts {
		return summary, nil
	}

	cfg := r.Config()
	dir, err := report.WriteArtifacts(c.artifactsDir, report.Artifacts{
		Config: report.RunConfig{
			RunID:               runID,
			CreatedAtUTC:        time.Now().UTC().Format(time.RFC3339),
			PopulationPath:      req.PopulationPath,
			PopulationSize:      len(organisms),
			TargetValue:         req.Target,
			Cap:                 cfg.Cap,
			Workers:             cfg.Workers,
			Distribution:        string(cfg.Distribution),
			WeightAverage:       cfg.Weights.Average,
			WeightMax:           cfg.Weights.Max,
			WeightHighPurity:    cfg.Weights.HighPurity,
			WeightPerfect:       cfg.Weights.Perfect,
			HighPurityThreshold: cfg.HighPurityThreshold,
		},
		Result: result,
	})
	if err != nil {
		return RecommendSummary{}, fmt.Errorf("write artifacts: %w", err)
	}
	logger.InfoContext(ctx, "run artifacts written", "dir", dir)
	summary.ArtifactsDir = dir
	return summary, nil
}

// Run returns a stored result by run id.
func (c *Client) Run(_ context.Context, runID string) (Result, error) {
	if runID == "" {
		return Result{}, errors.New("run id is required")
	}
	result, ok, err := report.ReadResult(c.artifactsDir, runID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, fmt.Errorf("run not found: %s", runID)
	}
	return result, nil
}

// Enumerate lists the offspring of one pair with per-locus probabilities and,
// when a target is given, the pair's purity score.
func (c *Client) Enumerate(_ context.Context, req EnumerateRequest) (Enumeration, error) {
	dist, err := genetics.ParseDistribution(req.Distribution)
	if err != nil {
		return Enumeration{}, err
	}
	outcomes, err := genetics.EnumerateWith(dist, req.Male, req.Female)
	if err != nil {
		return Enumeration{}, err
	}
	loci, err := genetics.LocusDistributions(req.Male, req.Female)
	if err != nil {
		return Enumeration{}, err
	}
	expected, err := genetics.OutcomeCount(len(req.Male))
	if err != nil {
		return Enumeration{}, err
	}

	e := Enumeration{
		Male:         req.Male,
		Female:       req.Female,
		Distribution: dist,
		Outcomes:     outcomes,
		Loci:         loci,
		Expected:     expected,
	}
	if req.Target != nil {
		score, err := genetics.DefaultScorer().Score(outcomes, *req.Target)
		if err != nil {
			return Enumeration{}, err
		}
		target := *req.Target
		e.Score = &score
		e.Target = &target
	}
	return e, nil
}

func (c *Client) LoadPopulation(_ context.Context, path string) ([]Organism, error) {
	return population.Load(path)
}

// GeneratePopulation builds a synthetic population and writes it to OutPath
// when one is set. Counts are taken as given, so a zero count yields an empty
// segment; start from DefaultGenerateRequest for the generator defaults.
func (c *Client) GeneratePopulation(_ context.Context, req GenerateRequest) ([]Organism, error) {
	cfg := population.GenerateConfig{
		Males:   req.Males,
		Females: req.Females,
		Loci:    req.Loci,
		Min:     req.Min,
		Max:     req.Max,
		Seed:    req.Seed,
	}
	organisms, err := population.Generate(cfg)
	if err != nil {
		return nil, err
	}
	if req.OutPath != "" {
		if err := population.Save(req.OutPath, organisms); err != nil {
			return nil, err
		}
	}
	return organisms, nil
}

func (c *Client) Distribution(_ context.Context, organisms []Organism, target int) population.PurityDistribution {
	return population.Distribute(organisms, target)
}
