package population

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"purebreed/internal/model"
)

// ReadCSV reads a population table. With a header row the columns are id,
// sex, mature, next_breeding_time and trait columns t1..tN in any order.
// Without one, rows use the legacy layout id,t1..tN,mature,sex. A blank
// trait cell is rejected rather than skipped.
func ReadCSV(in io.Reader) ([]model.Organism, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read population csv: %w", err)
	}
	rows = dropBlank(rows)
	if len(rows) == 0 {
		return nil, nil
	}

	var records []Record
	if strings.EqualFold(strings.TrimSpace(rows[0][0]), "id") {
		records, err = recordsFromHeader(rows[0], rows[1:])
	} else {
		records, err = ReadRows(rows)
	}
	if err != nil {
		return nil, err
	}
	return Organisms(records)
}

type traitColumn struct {
	index int
	locus int
}

func recordsFromHeader(header []string, rows [][]string) ([]Record, error) {
	cols := map[string]int{}
	var traits []traitColumn
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if locus, ok := traitLocus(name); ok {
			traits = append(traits, traitColumn{index: i, locus: locus})
			continue
		}
		cols[name] = i
	}
	if _, ok := cols["sex"]; !ok {
		return nil, fmt.Errorf("%w: csv header has no sex column", ErrInvalidRecord)
	}
	if len(traits) == 0 {
		return nil, fmt.Errorf("%w: csv header has no trait columns (t1..tN)", ErrInvalidRecord)
	}
	sort.Slice(traits, func(i, j int) bool { return traits[i].locus < traits[j].locus })
	for i, tc := range traits {
		if tc.locus != i+1 {
			return nil, fmt.Errorf("%w: csv trait columns must be t1..t%d without gaps or repeats, found t%d", ErrInvalidRecord, len(traits), tc.locus)
		}
	}

	records := make([]Record, 0, len(rows))
	for r, row := range rows {
		line := r + 2
		rec := Record{
			ID:  field(row, cols, "id"),
			Sex: field(row, cols, "sex"),
		}
		if v := field(row, cols, "mature"); v != "" {
			mature, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d mature %q: %v", ErrInvalidRecord, line, v, err)
			}
			rec.Mature = mature
		}
		if v := field(row, cols, "next_breeding_time"); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d next_breeding_time %q: %v", ErrInvalidRecord, line, v, err)
			}
			rec.NextBreedingTime = &ts
		}
		for _, tc := range traits {
			if tc.index >= len(row) || strings.TrimSpace(row[tc.index]) == "" {
				return nil, fmt.Errorf("%w: line %d trait t%d is blank", ErrInvalidRecord, line, tc.locus)
			}
			v, err := strconv.Atoi(strings.TrimSpace(row[tc.index]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d trait t%d: %v", ErrInvalidRecord, line, tc.locus, err)
			}
			rec.Traits = append(rec.Traits, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadRows converts legacy rows laid out as id,t1..tN,mature,sex.
func ReadRows(rows [][]string) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for r, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("%w: row %d has %d fields, want id,traits...,mature,sex", ErrInvalidRecord, r+1, len(row))
		}
		last := len(row) - 1
		rec := Record{
			ID:  strings.TrimSpace(row[0]),
			Sex: strings.TrimSpace(row[last]),
		}
		mature, err := strconv.ParseBool(strings.TrimSpace(row[last-1]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d mature %q: %v", ErrInvalidRecord, r+1, row[last-1], err)
		}
		rec.Mature = mature
		for i := 1; i < last-1; i++ {
			v, err := strconv.Atoi(strings.TrimSpace(row[i]))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d trait %d: %v", ErrInvalidRecord, r+1, i, err)
			}
			rec.Traits = append(rec.Traits, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV writes organisms with a header row readable by ReadCSV. Every
// organism must carry the same number of traits.
func WriteCSV(out io.Writer, organisms []model.Organism) error {
	loci := 0
	for i, o := range organisms {
		if i > 0 && len(o.Traits) != loci {
			return fmt.Errorf("%w: organism %q has %d traits, want %d for a csv table", ErrInvalidRecord, o.ID, len(o.Traits), loci)
		}
		loci = len(o.Traits)
	}

	header := []string{"id", "sex", "mature", "next_breeding_time"}
	for i := 1; i <= loci; i++ {
		header = append(header, "t"+strconv.Itoa(i))
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, o := range organisms {
		row := make([]string, len(header))
		row[0] = o.ID
		row[1] = string(o.Sex)
		row[2] = strconv.FormatBool(o.Mature)
		if o.NextBreedingTime != nil {
			row[3] = o.NextBreedingTime.UTC().Format(time.RFC3339)
		}
		for i, v := range o.Traits {
			row[4+i] = strconv.Itoa(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func traitLocus(name string) (int, bool) {
	if len(name) < 2 || name[0] != 't' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func dropBlank(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for _, f := range row {
			if strings.TrimSpace(f) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}
