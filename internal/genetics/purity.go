package genetics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"purebreed/internal/model"
)

const weightSumTolerance = 1e-9

// DefaultHighPurityThreshold is the purity at or above which an offspring
// counts as high purity.
const DefaultHighPurityThreshold = 2.0 / 3.0

var ErrInvalidWeights = errors.New("invalid composite weights")

var validate = validator.New()

// Weights blends the four purity metrics into a composite score. They must be
// non-negative and sum to 1 so the composite stays in [0,1].
type Weights struct {
	Average    float64 `json:"average" yaml:"average" validate:"gte=0,lte=1"`
	Max        float64 `json:"max" yaml:"max" validate:"gte=0,lte=1"`
	HighPurity float64 `json:"highPurity" yaml:"highPurity" validate:"gte=0,lte=1"`
	Perfect    float64 `json:"perfect" yaml:"perfect" validate:"gte=0,lte=1"`
}

func DefaultWeights() Weights {
	return Weights{Average: 0.4, Max: 0.3, HighPurity: 0.2, Perfect: 0.1}
}

func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	sum := w.Average + w.Max + w.HighPurity + w.Perfect
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: sum is %g, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Scorer reduces an offspring set to a PairScore.
type Scorer struct {
	Weights             Weights
	HighPurityThreshold float64
}

func NewScorer(weights Weights, highPurityThreshold float64) (Scorer, error) {
	if err := weights.Validate(); err != nil {
		return Scorer{}, err
	}
	if highPurityThreshold == 0 {
		highPurityThreshold = DefaultHighPurityThreshold
	}
	if highPurityThreshold < 0 || highPurityThreshold > 1 {
		return Scorer{}, fmt.Errorf("high purity threshold must be in (0, 1], got %g", highPurityThreshold)
	}
	return Scorer{Weights: weights, HighPurityThreshold: highPurityThreshold}, nil
}

func DefaultScorer() Scorer {
	return Scorer{Weights: DefaultWeights(), HighPurityThreshold: DefaultHighPurityThreshold}
}

// Purity is the fraction of loci equal to target. An empty vector has purity 0.
func Purity(traits []int, target int) float64 {
	if len(traits) == 0 {
		return 0
	}
	matches := 0
	for _, v := range traits {
		if v == target {
			matches++
		}
	}
	return float64(matches) / float64(len(traits))
}

// Score evaluates outcomes against target. Outcomes are weighted by
// multiplicity, which makes a deduplicated set score the same as the branch
// set it came from. Ties on max purity keep the first outcome.
func (s Scorer) Score(outcomes []model.Outcome, target int) (model.PairScore, error) {
	if len(outcomes) == 0 {
		return model.PairScore{}, ErrNoOutcomes
	}
	threshold := s.HighPurityThreshold
	if threshold == 0 {
		threshold = DefaultHighPurityThreshold
	}

	var (
		total       int
		purityTotal float64
		highCount   int
		perfect     int
		bestIdx     int
		maxPurity   = math.Inf(-1)
	)
	for i, o := range outcomes {
		m := multiplicity(o)
		p := Purity(o.Traits, target)
		total += m
		purityTotal += p * float64(m)
		if p >= threshold {
			highCount += m
		}
		if p == 1 {
			perfect += m
		}
		if p > maxPurity {
			maxPurity = p
			bestIdx = i
		}
	}

	score := model.PairScore{
		AveragePurity:   purityTotal / float64(total),
		MaxPurity:       maxPurity,
		BestOffspring:   append([]int{}, outcomes[bestIdx].Traits...),
		HighPurityCount: highCount,
		PerfectCount:    perfect,
		HighPurityRatio: float64(highCount) / float64(total),
		PerfectRatio:    float64(perfect) / float64(total),
		Outcomes:        total,
	}
	score.CompositeScore = s.Composite(score)
	return score, nil
}

// Composite applies the weights to an already computed score.
func (s Scorer) Composite(score model.PairScore) float64 {
	w := s.Weights
	composite := w.Average*score.AveragePurity +
		w.Max*score.MaxPurity +
		w.HighPurity*score.HighPurityRatio +
		w.Perfect*score.PerfectRatio
	// Float rounding on a convex combination can land a hair outside [0,1].
	return math.Min(1, math.Max(0, composite))
}
