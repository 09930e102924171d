// Package genetics enumerates offspring trait vectors for a breeding pair under
// independent per-locus inheritance and scores them for purity.
package genetics

import (
	"errors"
	"fmt"

	"purebreed/internal/model"
)

// MaxLoci bounds enumeration to 2^24 outcomes per pair.
const MaxLoci = 24

var (
	ErrInputMismatch = errors.New("trait vector length mismatch")
	ErrTooManyLoci   = errors.New("too many loci to enumerate")
	ErrNoOutcomes    = errors.New("no outcomes to score")
	ErrLocusRange    = errors.New("locus out of range")
)

// Distribution selects how enumerated outcomes are presented.
type Distribution string

const (
	// DistributionBranch keeps every male/female inheritance branch, 2^N outcomes
	// with uniform probability even when parents share a value.
	DistributionBranch Distribution = "branch"
	// DistributionDistinct merges equal trait vectors and sums their probability.
	DistributionDistinct Distribution = "distinct"
)

func ParseDistribution(name string) (Distribution, error) {
	switch Distribution(name) {
	case "", DistributionBranch:
		return DistributionBranch, nil
	case DistributionDistinct:
		return DistributionDistinct, nil
	default:
		return "", fmt.Errorf("unsupported distribution: %s", name)
	}
}

// OutcomeCount returns 2^N for N loci.
func OutcomeCount(loci int) (int, error) {
	if loci < 0 {
		return 0, fmt.Errorf("%w: negative locus count %d", ErrLocusRange, loci)
	}
	if loci > MaxLoci {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyLoci, loci, MaxLoci)
	}
	return 1 << loci, nil
}

// Enumerate returns every offspring trait vector the pair can produce in
// male-first depth-first order. Bit N-1-i of the pattern selects the female
// value at locus i, so pattern 0 is the all-male vector and the last pattern is
// the all-female vector.
func Enumerate(male, female []int) ([]model.Outcome, error) {
	if len(male) != len(female) {
		return nil, fmt.Errorf("%w: male=%d female=%d", ErrInputMismatch, len(male), len(female))
	}
	n := len(male)
	count, err := OutcomeCount(n)
	if err != nil {
		return nil, err
	}

	probability := 1 / float64(count)
	// One backing array keeps allocation count independent of 2^N.
	backing := make([]int, count*n)
	out := make([]model.Outcome, count)
	for pattern := 0; pattern < count; pattern++ {
		traits := backing[pattern*n : (pattern+1)*n : (pattern+1)*n]
		for locus := 0; locus < n; locus++ {
			if pattern&(1<<(n-1-locus)) != 0 {
				traits[locus] = female[locus]
			} else {
				traits[locus] = male[locus]
			}
		}
		out[pattern] = model.Outcome{Traits: traits, Probability: probability, Multiplicity: 1}
	}
	return out, nil
}

// EnumerateDistinct merges equal vectors from Enumerate. Outcomes keep the
// order of their first occurrence and carry multiplicity/2^N as probability.
func EnumerateDistinct(male, female []int) ([]model.Outcome, error) {
	branches, err := Enumerate(male, female)
	if err != nil {
		return nil, err
	}
	return Deduplicate(branches), nil
}

// Deduplicate collapses equal trait vectors, summing multiplicities.
func Deduplicate(outcomes []model.Outcome) []model.Outcome {
	total := 0
	for _, o := range outcomes {
		total += multiplicity(o)
	}

	index := make(map[string]int, len(outcomes))
	out := make([]model.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		key := traitsKey(o.Traits)
		if i, ok := index[key]; ok {
			out[i].Multiplicity += multiplicity(o)
			continue
		}
		index[key] = len(out)
		out = append(out, model.Outcome{
			Traits:       append([]int(nil), o.Traits...),
			Multiplicity: multiplicity(o),
		})
	}
	for i := range out {
		out[i].Probability = float64(out[i].Multiplicity) / float64(total)
	}
	return out
}

// EnumerateWith dispatches on the requested distribution.
func EnumerateWith(dist Distribution, male, female []int) ([]model.Outcome, error) {
	switch dist {
	case "", DistributionBranch:
		return Enumerate(male, female)
	case DistributionDistinct:
		return EnumerateDistinct(male, female)
	default:
		return nil, fmt.Errorf("unsupported distribution: %s", dist)
	}
}

// LocusProbability is the chance that a single offspring locus inherits value.
// Each parent contributes with probability 1/2.
func LocusProbability(male, female []int, locus, value int) (float64, error) {
	if len(male) != len(female) {
		return 0, fmt.Errorf("%w: male=%d female=%d", ErrInputMismatch, len(male), len(female))
	}
	if locus < 0 || locus >= len(male) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrLocusRange, locus, len(male))
	}
	count := 0
	if male[locus] == value {
		count++
	}
	if female[locus] == value {
		count++
	}
	return float64(count) / 2, nil
}

// LocusDistribution lists the values a locus can inherit with their chance.
type LocusDistribution struct {
	Locus  int          `json:"locus" yaml:"locus"`
	Values []LocusValue `json:"values" yaml:"values"`
}

type LocusValue struct {
	Value       int     `json:"value" yaml:"value"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// LocusDistributions returns the per-locus inheritance distribution, male value
// first.
func LocusDistributions(male, female []int) ([]LocusDistribution, error) {
	if len(male) != len(female) {
		return nil, fmt.Errorf("%w: male=%d female=%d", ErrInputMismatch, len(male), len(female))
	}
	out := make([]LocusDistribution, len(male))
	for i := range male {
		dist := LocusDistribution{Locus: i}
		if male[i] == female[i] {
			dist.Values = []LocusValue{{Value: male[i], Probability: 1}}
		} else {
			dist.Values = []LocusValue{
				{Value: male[i], Probability: 0.5},
				{Value: female[i], Probability: 0.5},
			}
		}
		out[i] = dist
	}
	return out, nil
}

func multiplicity(o model.Outcome) int {
	if o.Multiplicity <= 0 {
		return 1
	}
	return o.Multiplicity
}

func traitsKey(traits []int) string {
	return fmt.Sprint(traits)
}
