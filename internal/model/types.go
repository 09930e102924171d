package model

import "time"

// VersionedRecord captures schema evolution for encoded reports.
type VersionedRecord struct {
	SchemaVersion int `json:"schemaVersion" yaml:"schemaVersion"`
}

const SchemaVersion = 1

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

func (s Sex) Valid() bool {
	return s == Male || s == Female
}

// Organism is a read-only breeding record. Traits holds one value per locus.
type Organism struct {
	ID               string     `json:"id" yaml:"id"`
	Traits           []int      `json:"traits" yaml:"traits"`
	Sex              Sex        `json:"sex" yaml:"sex"`
	Mature           bool       `json:"mature" yaml:"mature"`
	NextBreedingTime *time.Time `json:"nextBreedingTime,omitempty" yaml:"nextBreedingTime,omitempty"`
}

// BreedingPair is an ordered (male, female) pair evaluated transiently.
type BreedingPair struct {
	Male   Organism
	Female Organism
}

// Outcome is one offspring trait vector. Multiplicity counts the inheritance
// branches the vector stands for; it is 1 unless outcomes were deduplicated.
type Outcome struct {
	Traits       []int   `json:"traits" yaml:"traits"`
	Probability  float64 `json:"probability" yaml:"probability"`
	Multiplicity int     `json:"multiplicity" yaml:"multiplicity"`
}

type PairScore struct {
	AveragePurity   float64 `json:"averagePurity" yaml:"averagePurity"`
	MaxPurity       float64 `json:"maxPurity" yaml:"maxPurity"`
	BestOffspring   []int   `json:"bestOffspring" yaml:"bestOffspring"`
	HighPurityCount int     `json:"highPurityCount" yaml:"highPurityCount"`
	PerfectCount    int     `json:"perfectCount" yaml:"perfectCount"`
	HighPurityRatio float64 `json:"highPurityRatio" yaml:"highPurityRatio"`
	PerfectRatio    float64 `json:"perfectRatio" yaml:"perfectRatio"`
	CompositeScore  float64 `json:"compositeScore" yaml:"compositeScore"`
	Outcomes        int     `json:"outcomes" yaml:"outcomes"`
}

// Candidate is a scored pair tagged with its originating organisms.
type Candidate struct {
	Male   Organism  `json:"-" yaml:"-"`
	Female Organism  `json:"female" yaml:"female"`
	Score  PairScore `json:"score" yaml:"score"`
}

type Recommendation struct {
	Male         Organism    `json:"male" yaml:"male"`
	Females      []Candidate `json:"females" yaml:"females"`
	OverallScore float64     `json:"overallScore" yaml:"overallScore"`
}

type SkippedPair struct {
	MaleID   string `json:"maleId" yaml:"maleId"`
	FemaleID string `json:"femaleId" yaml:"femaleId"`
	Reason   string `json:"reason" yaml:"reason"`
}

type Status string

const (
	StatusOK                     Status = "ok"
	StatusEmptyPopulationSegment Status = "empty_population_segment"
	StatusNoScoredPairs          Status = "no_scored_pairs"
)

type GroupStats struct {
	TotalCouples                 int     `json:"totalCouples" yaml:"totalCouples"`
	TotalCombinations            int     `json:"totalCombinations" yaml:"totalCombinations"`
	AverageCombinationsPerCouple float64 `json:"averageCombinationsPerCouple" yaml:"averageCombinationsPerCouple"`
	// ExpectedPurity and PerfectRatio are taken over the pooled offspring of
	// all couples.
	ExpectedPurity float64 `json:"expectedPurity" yaml:"expectedPurity"`
	PerfectRatio   float64 `json:"perfectRatio" yaml:"perfectRatio"`
}

type Summary struct {
	TotalPairings        int        `json:"totalPairings" yaml:"totalPairings"`
	ScoredPairings       int        `json:"scoredPairings" yaml:"scoredPairings"`
	SkippedPairings      int        `json:"skippedPairings" yaml:"skippedPairings"`
	BestCompositeScore   float64    `json:"bestCompositeScore" yaml:"bestCompositeScore"`
	BestAveragePurity    float64    `json:"bestAveragePurity" yaml:"bestAveragePurity"`
	BestMaxPurity        float64    `json:"bestMaxPurity" yaml:"bestMaxPurity"`
	TotalRecommendations int        `json:"totalRecommendations" yaml:"totalRecommendations"`
	Males                int        `json:"males" yaml:"males"`
	Females              int        `json:"females" yaml:"females"`
	Group                GroupStats `json:"group" yaml:"group"`
}

// Result is the outcome of one recommendation run.
type Result struct {
	VersionedRecord `yaml:",inline"`
	RunID           string           `json:"runId,omitempty" yaml:"runId,omitempty"`
	TargetValue     int              `json:"targetValue" yaml:"targetValue"`
	Status          Status           `json:"status" yaml:"status"`
	Message         string           `json:"message,omitempty" yaml:"message,omitempty"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	Skipped         []SkippedPair    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary         Summary          `json:"summary" yaml:"summary"`
}
