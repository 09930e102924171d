// Package breeding scores every (male, female) pairing in a population and
// greedily assigns each male a bounded list of exclusive female candidates.
package breeding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"purebreed/internal/genetics"
	"purebreed/internal/metrics"
	"purebreed/internal/model"
)

// DefaultCap is the number of females recommended per male.
const DefaultCap = 3

var ErrInvalidOrganism = errors.New("invalid organism")

var validate = validator.New()

type Config struct {
	Cap                 int                   `validate:"gte=0"`
	Workers             int                   `validate:"gte=0"`
	Distribution        genetics.Distribution `validate:"omitempty,oneof=branch distinct"`
	Weights             genetics.Weights
	HighPurityThreshold float64 `validate:"gte=0,lte=1"`
}

type Recommender struct {
	cfg     Config
	scorer  genetics.Scorer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(r *Recommender)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recommender) {
		r.metrics = m
	}
}

// New validates cfg and fills defaults: cap 3, one worker, branch distribution
// and the 0.4/0.3/0.2/0.1 weights when none are set.
func New(cfg Config, opts ...Option) (*Recommender, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid recommender config: %w", err)
	}
	if cfg.Cap == 0 {
		cfg.Cap = DefaultCap
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Distribution == "" {
		cfg.Distribution = genetics.DistributionBranch
	}
	if cfg.Weights == (genetics.Weights{}) {
		cfg.Weights = genetics.DefaultWeights()
	}
	scorer, err := genetics.NewScorer(cfg.Weights, cfg.HighPurityThreshold)
	if err != nil {
		return nil, err
	}
	cfg.HighPurityThreshold = scorer.HighPurityThreshold

	r := &Recommender{
		cfg:    cfg,
		scorer: scorer,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Recommender) Config() Config {
	return r.cfg
}

// Partition splits population by sex, preserving input order. An organism with
// an unknown sex is a structural input error.
func Partition(population []model.Organism) (males, females []model.Organism, err error) {
	for i, o := range population {
		switch o.Sex {
		case model.Male:
			males = append(males, o)
		case model.Female:
			females = append(females, o)
		default:
			return nil, nil, fmt.Errorf("%w: organism %q at index %d has sex %q", ErrInvalidOrganism, o.ID, i, o.Sex)
		}
	}
	return males, females, nil
}

// Recommend scores all pairs and assigns up to Cap exclusive females per male.
// Pairs that cannot be enumerated are reported in Result.Skipped. Only
// malformed organisms and context cancellation return an error.
func (r *Recommender) Recommend(ctx context.Context, population []model.Organism, target int) (model.Result, error) {
	start := time.Now()
	if r.metrics != nil {
		defer r.metrics.ObserveRun(start)
	}

	result := model.Result{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.SchemaVersion},
		TargetValue:     target,
		Status:          model.StatusOK,
		Recommendations: []model.Recommendation{},
	}

	males, females, err := Partition(population)
	if err != nil {
		return model.Result{}, err
	}
	result.Summary.Males = len(males)
	result.Summary.Females = len(females)

	r.logger.InfoContext(ctx, "recommendation run started",
		"target", target,
		"males", len(males),
		"females", len(females),
		"workers", r.cfg.Workers,
	)

	if len(males) == 0 || len(females) == 0 {
		result.Status = model.StatusEmptyPopulationSegment
		result.Message = fmt.Sprintf("not enough organisms to pair: males=%d females=%d", len(males), len(females))
		r.logger.WarnContext(ctx, "empty population segment", "males", len(males), "females", len(females))
		return result, nil
	}

	evalStart := time.Now()
	pairs, skipped, err := r.evaluate(ctx, males, females, target)
	if err != nil {
		return model.Result{}, err
	}
	if r.metrics != nil {
		r.metrics.ObserveEvaluate(evalStart)
		r.metrics.AddPairsEvaluated(len(males) * len(females))
		r.metrics.AddPairsSkipped(len(skipped))
	}
	for _, s := range skipped {
		r.logger.WarnContext(ctx, "pair skipped", "male_id", s.MaleID, "female_id", s.FemaleID, "reason", s.Reason)
	}

	result.Skipped = skipped
	result.Summary.TotalPairings = len(males) * len(females)
	result.Summary.ScoredPairings = len(pairs)
	result.Summary.SkippedPairings = len(skipped)
	for i, p := range pairs {
		s := p.candidate.Score
		if i == 0 || s.CompositeScore > result.Summary.BestCompositeScore {
			result.Summary.BestCompositeScore = s.CompositeScore
		}
		if i == 0 || s.AveragePurity > result.Summary.BestAveragePurity {
			result.Summary.BestAveragePurity = s.AveragePurity
		}
		if i == 0 || s.MaxPurity > result.Summary.BestMaxPurity {
			result.Summary.BestMaxPurity = s.MaxPurity
		}
	}

	if len(pairs) == 0 {
		result.Status = model.StatusNoScoredPairs
		result.Message = fmt.Sprintf("all %d pairings were skipped", len(skipped))
		return result, nil
	}

	result.Recommendations = assign(males, pairs, r.cfg.Cap)
	result.Summary.TotalRecommendations = len(result.Recommendations)

	group := GroupFromRecommendations(result.Recommendations)
	stats, err := group.Stats()
	if err != nil {
		return model.Result{}, fmt.Errorf("group stats: %w", err)
	}
	season, err := group.Score(r.cfg.Distribution, r.scorer, target)
	if err != nil {
		return model.Result{}, fmt.Errorf("group score: %w", err)
	}
	stats.ExpectedPurity = season.AveragePurity
	stats.PerfectRatio = season.PerfectRatio
	result.Summary.Group = stats

	if r.metrics != nil {
		r.metrics.AddRecommendations(len(result.Recommendations))
	}
	r.logger.InfoContext(ctx, "recommendation run finished",
		"pairings", result.Summary.TotalPairings,
		"skipped", len(skipped),
		"recommendations", len(result.Recommendations),
		"best_composite", result.Summary.BestCompositeScore,
		"elapsed", time.Since(start),
	)
	return result, nil
}
