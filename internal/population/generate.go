package population

import (
	"fmt"
	"math/rand"

	"purebreed/internal/genetics"
	"purebreed/internal/model"
)

type GenerateConfig struct {
	Males   int   `validate:"gte=0"`
	Females int   `validate:"gte=0"`
	Loci    int   `validate:"gte=1"`
	Min     int   `validate:"ltefield=Max"`
	Max     int   `validate:"gtefield=Min"`
	Seed    int64 `validate:"-"`
}

func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Males: 50, Females: 50, Loci: 3, Min: 1, Max: 100, Seed: 1}
}

// Generate builds a mature population with uniformly random trait values in
// [Min, Max]. Males come first with ids M1..Mn, then females F1..Fn. The same
// config always yields the same population.
func Generate(cfg GenerateConfig) ([]model.Organism, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid generate config: %w", err)
	}
	if cfg.Loci > genetics.MaxLoci {
		return nil, fmt.Errorf("%w: %d > %d", genetics.ErrTooManyLoci, cfg.Loci, genetics.MaxLoci)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	span := cfg.Max - cfg.Min + 1
	out := make([]model.Organism, 0, cfg.Males+cfg.Females)
	add := func(prefix string, sex model.Sex, n int) {
		for i := 1; i <= n; i++ {
			traits := make([]int, cfg.Loci)
			for j := range traits {
				traits[j] = cfg.Min + rng.Intn(span)
			}
			out = append(out, model.Organism{
				ID:     fmt.Sprintf("%s%d", prefix, i),
				Traits: traits,
				Sex:    sex,
				Mature: true,
			})
		}
	}
	add("M", model.Male, cfg.Males)
	add("F", model.Female, cfg.Females)
	return out, nil
}

// PurityDistribution buckets organisms by their own purity for a target value.
type PurityDistribution struct {
	Target  int `json:"target" yaml:"target"`
	Total   int `json:"total" yaml:"total"`
	Perfect int `json:"perfect" yaml:"perfect"`
	High    int `json:"high" yaml:"high"`
	Medium  int `json:"medium" yaml:"medium"`
	Low     int `json:"low" yaml:"low"`
	Zero    int `json:"zero" yaml:"zero"`
}

// Distribute places each organism in exactly one bucket: perfect (1), high
// [2/3, 1), medium [1/3, 2/3), low (0, 1/3) or zero.
func Distribute(organisms []model.Organism, target int) PurityDistribution {
	d := PurityDistribution{Target: target, Total: len(organisms)}
	for _, o := range organisms {
		p := genetics.Purity(o.Traits, target)
		switch {
		case p == 1:
			d.Perfect++
		case p >= 2.0/3.0:
			d.High++
		case p >= 1.0/3.0:
			d.Medium++
		case p > 0:
			d.Low++
		default:
			d.Zero++
		}
	}
	return d
}
