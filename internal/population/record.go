// Package population reads, validates and generates breeding populations.
package population

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"purebreed/internal/model"
)

var (
	ErrInvalidRecord = errors.New("invalid population record")
	ErrDuplicateID   = errors.New("duplicate organism id")
	ErrUnknownFormat = errors.New("unknown population format")
)

var validate = validator.New()

// Record is the on-disk form of an organism.
type Record struct {
	ID               string     `json:"id" yaml:"id"`
	Traits           []int      `json:"traits" yaml:"traits" validate:"min=1"`
	Sex              string     `json:"sex" yaml:"sex" validate:"required,oneof=male female"`
	Mature           bool       `json:"mature" yaml:"mature"`
	NextBreedingTime *time.Time `json:"next_breeding_time,omitempty" yaml:"next_breeding_time,omitempty"`
}

func RecordFromOrganism(o model.Organism) Record {
	return Record{
		ID:               o.ID,
		Traits:           append([]int(nil), o.Traits...),
		Sex:              string(o.Sex),
		Mature:           o.Mature,
		NextBreedingTime: o.NextBreedingTime,
	}
}

// Organisms validates records and converts them. Records without an id get a
// random UUID; repeated ids are rejected.
func Organisms(records []Record) ([]model.Organism, error) {
	out := make([]model.Organism, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		rec.Sex = strings.ToLower(strings.TrimSpace(rec.Sex))
		rec.ID = strings.TrimSpace(rec.ID)
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d (%q): %v", ErrInvalidRecord, i, rec.ID, err)
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if prev, ok := seen[rec.ID]; ok {
			return nil, fmt.Errorf("%w: %q at records %d and %d", ErrDuplicateID, rec.ID, prev, i)
		}
		seen[rec.ID] = i

		out = append(out, model.Organism{
			ID:               rec.ID,
			Traits:           append([]int(nil), rec.Traits...),
			Sex:              model.Sex(rec.Sex),
			Mature:           rec.Mature,
			NextBreedingTime: rec.NextBreedingTime,
		})
	}
	return out, nil
}
