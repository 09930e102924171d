package genetics

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"purebreed/internal/model"
)

func TestPurity(t *testing.T) {
	cases := []struct {
		traits []int
		target int
		want   float64
	}{
		{traits: []int{12, 12, 12}, target: 12, want: 1},
		{traits: []int{12, 16, 44}, target: 12, want: 1.0 / 3.0},
		{traits: []int{12, 12, 44}, target: 12, want: 2.0 / 3.0},
		{traits: []int{42, 26, 95}, target: 12, want: 0},
		{traits: nil, target: 12, want: 0},
	}
	for _, tc := range cases {
		if got := Purity(tc.traits, tc.target); got != tc.want {
			t.Fatalf("purity(%v, %d): expected %g, got %g", tc.traits, tc.target, tc.want, got)
		}
	}
}

func TestScoreScenarioB(t *testing.T) {
	outcomes, err := Enumerate([]int{12, 12, 12}, []int{12, 12, 16})
	require.NoError(t, err)

	score, err := DefaultScorer().Score(outcomes, 12)
	require.NoError(t, err)

	require.Equal(t, 1.0, score.MaxPurity)
	require.Equal(t, []int{12, 12, 12}, score.BestOffspring)
	require.Equal(t, 4, score.PerfectCount)
	require.Equal(t, 8, score.HighPurityCount)
	require.Equal(t, 0.5, score.PerfectRatio)
	require.Equal(t, 1.0, score.HighPurityRatio)
	require.InDelta(t, 5.0/6.0, score.AveragePurity, 1e-12)
	require.InDelta(t, 0.4*5.0/6.0+0.3+0.2+0.05, score.CompositeScore, 1e-12)
	require.Equal(t, 8, score.Outcomes)
}

func TestScoreAverageAndMaxAreExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scorer := DefaultScorer()
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(6)
		male := make([]int, n)
		female := make([]int, n)
		for i := 0; i < n; i++ {
			male[i] = rng.Intn(4)
			female[i] = rng.Intn(4)
		}
		target := rng.Intn(4)
		outcomes, err := Enumerate(male, female)
		require.NoError(t, err)

		sum := 0.0
		maxPurity := 0.0
		for _, o := range outcomes {
			p := Purity(o.Traits, target)
			sum += p
			if p > maxPurity {
				maxPurity = p
			}
		}

		score, err := scorer.Score(outcomes, target)
		require.NoError(t, err)
		require.Equal(t, sum/float64(len(outcomes)), score.AveragePurity)
		require.Equal(t, maxPurity, score.MaxPurity)
		require.GreaterOrEqual(t, score.CompositeScore, 0.0)
		require.LessOrEqual(t, score.CompositeScore, 1.0)
	}
}

func TestScoreBestOffspringKeepsFirstTie(t *testing.T) {
	outcomes := []model.Outcome{
		{Traits: []int{1, 2}, Multiplicity: 1},
		{Traits: []int{2, 1}, Multiplicity: 1},
		{Traits: []int{1, 3}, Multiplicity: 1},
	}
	score, err := DefaultScorer().Score(outcomes, 1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, score.BestOffspring)
	require.Equal(t, 0.5, score.MaxPurity)
}

func TestScoreZeroPurityPicksFirstOutcome(t *testing.T) {
	outcomes, err := Enumerate([]int{42, 26, 95}, []int{1, 2, 3})
	require.NoError(t, err)
	score, err := DefaultScorer().Score(outcomes, 12)
	require.NoError(t, err)
	require.Equal(t, 0.0, score.MaxPurity)
	require.Equal(t, []int{42, 26, 95}, score.BestOffspring)
	require.Equal(t, 0.0, score.CompositeScore)
}

func TestScoreDegenerateEnumeration(t *testing.T) {
	outcomes, err := Enumerate(nil, nil)
	require.NoError(t, err)
	score, err := DefaultScorer().Score(outcomes, 12)
	require.NoError(t, err)
	require.Equal(t, 0.0, score.AveragePurity)
	require.Equal(t, 0.0, score.MaxPurity)
	require.Equal(t, 0, score.PerfectCount)
	require.Equal(t, 0, score.HighPurityCount)
	require.Empty(t, score.BestOffspring)
	require.Equal(t, 1, score.Outcomes)
}

func TestScoreRejectsEmptyOutcomes(t *testing.T) {
	_, err := DefaultScorer().Score(nil, 1)
	if !errors.Is(err, ErrNoOutcomes) {
		t.Fatalf("expected ErrNoOutcomes, got %v", err)
	}
}

func TestScoreDistinctMatchesBranch(t *testing.T) {
	male := []int{12, 12, 44, 12}
	female := []int{12, 26, 44, 12}
	branch, err := Enumerate(male, female)
	require.NoError(t, err)
	distinct, err := EnumerateDistinct(male, female)
	require.NoError(t, err)
	require.Len(t, distinct, 2)

	scorer := DefaultScorer()
	a, err := scorer.Score(branch, 12)
	require.NoError(t, err)
	b, err := scorer.Score(distinct, 12)
	require.NoError(t, err)

	require.InDelta(t, a.AveragePurity, b.AveragePurity, 1e-12)
	require.Equal(t, a.MaxPurity, b.MaxPurity)
	require.Equal(t, a.BestOffspring, b.BestOffspring)
	require.Equal(t, a.HighPurityCount, b.HighPurityCount)
	require.Equal(t, a.PerfectCount, b.PerfectCount)
	require.InDelta(t, a.CompositeScore, b.CompositeScore, 1e-12)
}

func TestScoreCustomWeights(t *testing.T) {
	scorer, err := NewScorer(Weights{Max: 1}, 0)
	require.NoError(t, err)
	outcomes, err := Enumerate([]int{12, 1}, []int{2, 12})
	require.NoError(t, err)
	score, err := scorer.Score(outcomes, 12)
	require.NoError(t, err)
	require.Equal(t, 1.0, score.CompositeScore)
	require.Equal(t, DefaultHighPurityThreshold, scorer.HighPurityThreshold)
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	cases := []Weights{
		{Average: 0.5, Max: 0.5, HighPurity: 0.5},
		{Average: -0.1, Max: 0.6, HighPurity: 0.4, Perfect: 0.1},
		{Average: 1.5, Max: -0.5},
		{},
	}
	for _, w := range cases {
		err := w.Validate()
		require.ErrorIs(t, err, ErrInvalidWeights, "weights %+v", w)
	}
}

func TestNewScorerRejectsThreshold(t *testing.T) {
	_, err := NewScorer(DefaultWeights(), 1.5)
	require.Error(t, err)
}

func BenchmarkScore12Loci(b *testing.B) {
	male := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	female := []int{12, 12, 12, 12, 12, 12, 1, 1, 1, 1, 1, 1}
	outcomes, err := Enumerate(male, female)
	if err != nil {
		b.Fatalf("enumerate: %v", err)
	}
	scorer := DefaultScorer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scorer.Score(outcomes, 12); err != nil {
			b.Fatalf("score: %v", err)
		}
	}
}
