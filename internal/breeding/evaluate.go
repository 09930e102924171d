package breeding

import (
	"context"

	"golang.org/x/sync/errgroup"

	"purebreed/internal/genetics"
	"purebreed/internal/model"
)

// scoredPair keeps population indices next to the candidate so assignment does
// not depend on organism ids being unique.
type scoredPair struct {
	maleIdx   int
	femaleIdx int
	candidate model.Candidate
}

type pairSlot struct {
	score model.PairScore
	err   error
}

// evaluate scores males x females. Each worker owns one male row of slots, so
// the merged order is male-major, female-minor regardless of worker count.
func (r *Recommender) evaluate(ctx context.Context, males, females []model.Organism, target int) ([]scoredPair, []model.SkippedPair, error) {
	slots := make([]pairSlot, len(males)*len(females))

	evaluateRow := func(ctx context.Context, i int) error {
		row := slots[i*len(females) : (i+1)*len(females)]
		for j := range females {
			if err := ctx.Err(); err != nil {
				return err
			}
			row[j].score, row[j].err = r.evaluatePair(males[i], females[j], target)
		}
		return nil
	}

	workers := r.cfg.Workers
	if workers > len(males) {
		workers = len(males)
	}
	if workers <= 1 {
		for i := range males {
			if err := evaluateRow(ctx, i); err != nil {
				return nil, nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range males {
			g.Go(func() error {
				return evaluateRow(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	pairs := make([]scoredPair, 0, len(slots))
	var skipped []model.SkippedPair
	for i, male := range males {
		for j, female := range females {
			slot := slots[i*len(females)+j]
			if slot.err != nil {
				skipped = append(skipped, model.SkippedPair{
					MaleID:   male.ID,
					FemaleID: female.ID,
					Reason:   slot.err.Error(),
				})
				continue
			}
			pairs = append(pairs, scoredPair{
				maleIdx:   i,
				femaleIdx: j,
				candidate: model.Candidate{Male: male, Female: female, Score: slot.score},
			})
		}
	}
	return pairs, skipped, nil
}

// EvaluatePair enumerates and scores one pair with the recommender's settings.
func (r *Recommender) EvaluatePair(pair model.BreedingPair, target int) (model.PairScore, error) {
	return r.evaluatePair(pair.Male, pair.Female, target)
}

func (r *Recommender) evaluatePair(male, female model.Organism, target int) (model.PairScore, error) {
	outcomes, err := genetics.EnumerateWith(r.cfg.Distribution, male.Traits, female.Traits)
	if err != nil {
		return model.PairScore{}, err
	}
	return r.scorer.Score(outcomes, target)
}
