package breeding

import (
	"fmt"

	"purebreed/internal/genetics"
	"purebreed/internal/model"
)

// Group is a set of couples bred together in one season.
type Group struct {
	Couples []model.BreedingPair
}

func (g *Group) Add(pair model.BreedingPair) {
	g.Couples = append(g.Couples, pair)
}

// GroupFromRecommendations expands each recommendation into its couples.
func GroupFromRecommendations(recs []model.Recommendation) Group {
	var g Group
	for _, rec := range recs {
		for _, c := range rec.Females {
			g.Add(model.BreedingPair{Male: rec.Male, Female: c.Female})
		}
	}
	return g
}

// Stats counts the offspring combinations across all couples. Each couple
// contributes 2^N branches.
func (g Group) Stats() (model.GroupStats, error) {
	stats := model.GroupStats{TotalCouples: len(g.Couples)}
	for _, c := range g.Couples {
		if len(c.Male.Traits) != len(c.Female.Traits) {
			return model.GroupStats{}, fmt.Errorf("%w: couple %s/%s", genetics.ErrInputMismatch, c.Male.ID, c.Female.ID)
		}
		n, err := genetics.OutcomeCount(len(c.Male.Traits))
		if err != nil {
			return model.GroupStats{}, err
		}
		stats.TotalCombinations += n
	}
	if stats.TotalCouples > 0 {
		stats.AverageCombinationsPerCouple = float64(stats.TotalCombinations) / float64(stats.TotalCouples)
	}
	return stats, nil
}

// Outcomes concatenates the offspring of every couple in couple order.
func (g Group) Outcomes(dist genetics.Distribution) ([]model.Outcome, error) {
	var out []model.Outcome
	for _, c := range g.Couples {
		outcomes, err := genetics.EnumerateWith(dist, c.Male.Traits, c.Female.Traits)
		if err != nil {
			return nil, fmt.Errorf("couple %s/%s: %w", c.Male.ID, c.Female.ID, err)
		}
		out = append(out, outcomes...)
	}
	return out, nil
}

// Score scores the pooled offspring of every couple as one set, giving the
// purity expected across the whole breeding season.
func (g Group) Score(dist genetics.Distribution, scorer genetics.Scorer, target int) (model.PairScore, error) {
	outcomes, err := g.Outcomes(dist)
	if err != nil {
		return model.PairScore{}, err
	}
	return scorer.Score(outcomes, target)
}
