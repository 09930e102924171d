package breeding

import (
	"sort"

	"purebreed/internal/model"
)

// claimSet records the females already assigned in one run, keyed by their
// index in the female partition.
type claimSet map[int]struct{}

func (c claimSet) claimed(femaleIdx int) bool {
	_, ok := c[femaleIdx]
	return ok
}

func (c claimSet) claim(femaleIdx int) {
	c[femaleIdx] = struct{}{}
}

// assign walks males in population order. Each male takes the top limit
// unclaimed females by composite score; equal scores keep female order. The
// returned list is then ordered by overall score, ties keeping walk order.
func assign(males []model.Organism, pairs []scoredPair, limit int) []model.Recommendation {
	byMale := make([][]scoredPair, len(males))
	for _, p := range pairs {
		byMale[p.maleIdx] = append(byMale[p.maleIdx], p)
	}

	claims := claimSet{}
	recommendations := make([]model.Recommendation, 0, len(males))
	for i, male := range males {
		available := make([]scoredPair, 0, len(byMale[i]))
		for _, p := range byMale[i] {
			if !claims.claimed(p.femaleIdx) {
				available = append(available, p)
			}
		}
		if len(available) == 0 {
			continue
		}

		sort.SliceStable(available, func(a, b int) bool {
			return available[a].candidate.Score.CompositeScore > available[b].candidate.Score.CompositeScore
		})
		chosen := available[:min(limit, len(available))]

		rec := model.Recommendation{
			Male:    male,
			Females: make([]model.Candidate, 0, len(chosen)),
		}
		total := 0.0
		for _, p := range chosen {
			claims.claim(p.femaleIdx)
			rec.Females = append(rec.Females, p.candidate)
			total += p.candidate.Score.CompositeScore
		}
		rec.OverallScore = total / float64(len(chosen))
		recommendations = append(recommendations, rec)
	}

	sort.SliceStable(recommendations, func(a, b int) bool {
		return recommendations[a].OverallScore > recommendations[b].OverallScore
	})
	return recommendations
}
