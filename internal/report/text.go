package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"purebreed/internal/genetics"
	"purebreed/internal/model"
	"purebreed/internal/population"
)

func percent(v float64) string {
	return humanize.FtoaWithDigits(v*100, 1) + "%"
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

// FormatTraits renders a trait vector as [a, b, c].
func FormatTraits(traits []int) string {
	parts := make([]string, len(traits))
	for i, v := range traits {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteText renders a recommendation result for a terminal.
func WriteText(w io.Writer, result model.Result) error {
	p := &printer{w: w}
	p.printf("target value: %d\n", result.TargetValue)
	if result.RunID != "" {
		p.printf("run id: %s\n", result.RunID)
	}
	p.printf("males: %s  females: %s\n", count(result.Summary.Males), count(result.Summary.Females))
	p.printf("status: %s\n", result.Status)
	if result.Message != "" {
		p.printf("note: %s\n", result.Message)
	}
	if result.Status == model.StatusEmptyPopulationSegment {
		return p.err
	}

	s := result.Summary
	p.printf("pairings evaluated: %s (scored %s, skipped %s)\n", count(s.TotalPairings), count(s.ScoredPairings), count(s.SkippedPairings))
	p.printf("recommendations: %s\n", count(s.TotalRecommendations))
	p.printf("best composite score: %s\n", percent(s.BestCompositeScore))
	p.printf("best average purity: %s\n", percent(s.BestAveragePurity))
	p.printf("best max purity: %s\n", percent(s.BestMaxPurity))
	if s.Group.TotalCouples > 0 {
		p.printf("recommended couples: %s, offspring combinations: %s (%.1f per couple)\n",
			count(s.Group.TotalCouples), count(s.Group.TotalCombinations), s.Group.AverageCombinationsPerCouple)
		p.printf("expected offspring purity: %s (perfect %s)\n", percent(s.Group.ExpectedPurity), percent(s.Group.PerfectRatio))
	}

	for i, rec := range result.Recommendations {
		p.printf("\n%s recommendation\n", humanize.Ordinal(i+1))
		p.printf("  male %s traits %s\n", rec.Male.ID, FormatTraits(rec.Male.Traits))
		p.printf("  overall composite score: %s\n", percent(rec.OverallScore))
		for j, c := range rec.Females {
			sc := c.Score
			p.printf("  female %d: %s traits %s\n", j+1, c.Female.ID, FormatTraits(c.Female.Traits))
			p.printf("    composite score: %s\n", percent(sc.CompositeScore))
			p.printf("    average purity: %s\n", percent(sc.AveragePurity))
			p.printf("    max purity: %s\n", percent(sc.MaxPurity))
			p.printf("    high purity offspring: %d/%d (%s)\n", sc.HighPurityCount, sc.Outcomes, percent(sc.HighPurityRatio))
			p.printf("    perfect offspring: %d (%s)\n", sc.PerfectCount, percent(sc.PerfectRatio))
			p.printf("    best offspring: %s\n", FormatTraits(sc.BestOffspring))
		}
	}

	if len(result.Skipped) > 0 {
		p.printf("\nskipped pairings\n")
		for _, sk := range result.Skipped {
			p.printf("  %s x %s: %s\n", sk.MaleID, sk.FemaleID, sk.Reason)
		}
	}
	return p.err
}

// Enumeration is the offspring listing for one pair.
type Enumeration struct {
	Male         []int                        `json:"male" yaml:"male"`
	Female       []int                        `json:"female" yaml:"female"`
	Distribution genetics.Distribution        `json:"distribution" yaml:"distribution"`
	Outcomes     []model.Outcome              `json:"outcomes" yaml:"outcomes"`
	Loci         []genetics.LocusDistribution `json:"loci" yaml:"loci"`
	Expected     int                          `json:"expected" yaml:"expected"`
	Score        *model.PairScore             `json:"score,omitempty" yaml:"score,omitempty"`
	Target       *int                         `json:"target,omitempty" yaml:"target,omitempty"`
}

// WriteEnumerationText lists combinations, their probabilities, per-locus
// inheritance and a check of the 2^N branch count.
func WriteEnumerationText(w io.Writer, e Enumeration) error {
	p := &printer{w: w}
	p.printf("father traits: %s\n", FormatTraits(e.Male))
	p.printf("mother traits: %s\n", FormatTraits(e.Female))

	p.printf("\noffspring combinations (%s)\n", e.Distribution)
	branches := 0
	for i, o := range e.Outcomes {
		branches += max(o.Multiplicity, 1)
		p.printf("  %3d: %s  %s\n", i+1, FormatTraits(o.Traits), humanize.FtoaWithDigits(o.Probability*100, 2)+"%")
	}
	p.printf("total: %s combinations\n", count(len(e.Outcomes)))

	if len(e.Loci) > 0 {
		p.printf("\nper-locus inheritance\n")
		for _, l := range e.Loci {
			parts := make([]string, 0, len(l.Values))
			for _, v := range l.Values {
				parts = append(parts, fmt.Sprintf("%d=%s", v.Value, percent(v.Probability)))
			}
			p.printf("  locus %d: %s\n", l.Locus+1, strings.Join(parts, " "))
		}
	}

	verdict := "ok"
	if branches != e.Expected {
		verdict = "MISMATCH"
	}
	p.printf("\nexpected branches: 2^%d = %s, enumerated: %s, %s\n", len(e.Male), count(e.Expected), count(branches), verdict)

	if e.Score != nil && e.Target != nil {
		p.printf("\npurity against %d\n", *e.Target)
		p.printf("  composite score: %s\n", percent(e.Score.CompositeScore))
		p.printf("  average purity: %s  max purity: %s\n", percent(e.Score.AveragePurity), percent(e.Score.MaxPurity))
		p.printf("  best offspring: %s\n", FormatTraits(e.Score.BestOffspring))
	}
	return p.err
}

// WriteDistributionText renders the purity buckets of a population.
func WriteDistributionText(w io.Writer, d population.PurityDistribution) error {
	p := &printer{w: w}
	p.printf("target value: %d\n", d.Target)
	p.printf("organisms: %s\n", count(d.Total))
	p.printf("  perfect (100%%): %s\n", count(d.Perfect))
	p.printf("  high (66.7%%-99.9%%): %s\n", count(d.High))
	p.printf("  medium (33.3%%-66.6%%): %s\n", count(d.Medium))
	p.printf("  low (under 33.3%%): %s\n", count(d.Low))
	p.printf("  none (0%%): %s\n", count(d.Zero))
	return p.err
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
