package population

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"purebreed/internal/model"
)

func TestReadCSVWithHeader(t *testing.T) {
	in := strings.NewReader(`id,sex,mature,t2,t1,t3,next_breeding_time
1,male,true,16,12,44,2026-05-01T00:00:00Z
2,Female,false,26,42,95,

`)
	organisms, err := ReadCSV(in)
	require.NoError(t, err)
	require.Len(t, organisms, 2)

	require.Equal(t, "1", organisms[0].ID)
	require.Equal(t, model.Male, organisms[0].Sex)
	require.True(t, organisms[0].Mature)
	require.Equal(t, []int{12, 16, 44}, organisms[0].Traits)
	require.NotNil(t, organisms[0].NextBreedingTime)
	require.True(t, organisms[0].NextBreedingTime.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	require.Equal(t, model.Female, organisms[1].Sex)
	require.False(t, organisms[1].Mature)
	require.Equal(t, []int{42, 26, 95}, organisms[1].Traits)
	require.Nil(t, organisms[1].NextBreedingTime)
}

func TestReadCSVLegacyRows(t *testing.T) {
	in := strings.NewReader("1,12,16,44,true,male\n2,42,26,95,true,male\n3,12,16,44,false,female\n")
	organisms, err := ReadCSV(in)
	require.NoError(t, err)
	require.Len(t, organisms, 3)
	require.Equal(t, []int{42, 26, 95}, organisms[1].Traits)
	require.Equal(t, model.Female, organisms[2].Sex)
	require.False(t, organisms[2].Mature)
}

func TestReadCSVErrors(t *testing.T) {
	cases := map[string]string{
		"no sex column":   "id,t1\n1,2\n",
		"no trait column": "id,sex\n1,male\n",
		"bad trait":       "id,sex,t1\n1,male,x\n",
		"bad mature":      "id,sex,mature,t1\n1,male,maybe,3\n",
		"bad sex":         "id,sex,t1\n1,hermaphrodite,3\n",
		"short legacy":    "1,2,male\n",
		"duplicate ids":   "id,sex,t1\n1,male,3\n1,female,3\n",
		"blank trait":     "id,sex,t1,t2,t3\nm1,male,12,,44\n",
		"short row":       "id,sex,t1,t2,t3\nf1,female,12,26\n",
		"trait gap":       "id,sex,t1,t3\n1,male,3,4\n",
		"repeated trait":  "id,sex,t1,t1\n1,male,3,4\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(body))
			require.Error(t, err)
		})
	}
	_, err := ReadCSV(strings.NewReader("id,sex,t1\n1,male,3\n1,female,3\n"))
	require.ErrorIs(t, err, ErrDuplicateID)
	_, err = ReadCSV(strings.NewReader("id,sex,t1\n1,other,3\n"))
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestReadCSVBlankTraitKeepsLocusAlignment(t *testing.T) {
	in := strings.NewReader("id,sex,t1,t2,t3\nm1,male,12,,44\nf1,female,12,26,\n")
	organisms, err := ReadCSV(in)
	require.ErrorIs(t, err, ErrInvalidRecord)
	require.ErrorContains(t, err, "line 2 trait t2")
	require.Nil(t, organisms)

	_, err = ReadCSV(strings.NewReader("id,sex,t1,t2,t3\nf1,female,12,26,\n"))
	require.ErrorContains(t, err, "line 2 trait t3")
}

func TestWriteCSVRejectsMixedTraitLengths(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []model.Organism{
		{ID: "a", Sex: model.Male, Traits: []int{1, 2}},
		{ID: "b", Sex: model.Female, Traits: []int{1}},
	})
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestReadCSVEmpty(t *testing.T) {
	organisms, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, organisms)
}

func TestOrganismsAssignsMissingIDs(t *testing.T) {
	organisms, err := Organisms([]Record{
		{Sex: "male", Traits: []int{1}},
		{Sex: " FEMALE ", Traits: []int{2}},
	})
	require.NoError(t, err)
	require.Len(t, organisms, 2)
	for _, o := range organisms {
		_, err := uuid.Parse(o.ID)
		require.NoError(t, err, "id %q", o.ID)
	}
	require.NotEqual(t, organisms[0].ID, organisms[1].ID)
	require.Equal(t, model.Female, organisms[1].Sex)
}

func TestOrganismsRejectsEmptyTraits(t *testing.T) {
	_, err := Organisms([]Record{{ID: "a", Sex: "male"}})
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestReadYAML(t *testing.T) {
	in := strings.NewReader(`
- id: m1
  sex: male
  mature: true
  traits: [12, 12, 12]
- id: f1
  sex: female
  traits: [12, 26, 44]
  next_breeding_time: 2026-06-01T10:00:00Z
`)
	organisms, err := ReadYAML(in)
	require.NoError(t, err)
	require.Len(t, organisms, 2)
	require.Equal(t, []int{12, 12, 12}, organisms[0].Traits)
	require.NotNil(t, organisms[1].NextBreedingTime)
	require.Equal(t, 2026, organisms[1].NextBreedingTime.Year())
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`[{"id":"a","sex":"male","traits":[1],"colour":"red"}]`))
	require.Error(t, err)
}

func TestRoundTripFormats(t *testing.T) {
	next := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	organisms := []model.Organism{
		{ID: "m1", Sex: model.Male, Mature: true, Traits: []int{12, 16, 44}, NextBreedingTime: &next},
		{ID: "f1", Sex: model.Female, Traits: []int{42, 26, 95}},
	}
	dir := t.TempDir()
	for _, name := range []string{"pop.csv", "pop.yaml", "pop.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, organisms))
			loaded, err := Load(path)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			for i := range organisms {
				require.Equal(t, organisms[i].ID, loaded[i].ID)
				require.Equal(t, organisms[i].Sex, loaded[i].Sex)
				require.Equal(t, organisms[i].Mature, loaded[i].Mature)
				require.Equal(t, organisms[i].Traits, loaded[i].Traits)
			}
			require.NotNil(t, loaded[0].NextBreedingTime)
			require.True(t, loaded[0].NextBreedingTime.Equal(next))
		})
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Load(path)
	require.ErrorIs(t, err, ErrUnknownFormat)

	var buf bytes.Buffer
	require.ErrorIs(t, Write(&buf, "xml", nil), ErrUnknownFormat)
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := GenerateConfig{Males: 5, Females: 7, Loci: 4, Min: 1, Max: 6, Seed: 42}
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	require.Equal(t, a, b)

	require.Len(t, a, 12)
	require.Equal(t, "M1", a[0].ID)
	require.Equal(t, model.Male, a[4].Sex)
	require.Equal(t, "F1", a[5].ID)
	require.Equal(t, model.Female, a[11].Sex)
	for _, o := range a {
		require.True(t, o.Mature)
		require.Len(t, o.Traits, 4)
		for _, v := range o.Traits {
			require.GreaterOrEqual(t, v, 1)
			require.LessOrEqual(t, v, 6)
		}
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	cases := []GenerateConfig{
		{Males: -1, Females: 1, Loci: 3, Min: 1, Max: 2},
		{Males: 1, Females: 1, Loci: 0, Min: 1, Max: 2},
		{Males: 1, Females: 1, Loci: 3, Min: 5, Max: 2},
		{Males: 1, Females: 1, Loci: 25, Min: 1, Max: 2},
	}
	for _, cfg := range cases {
		_, err := Generate(cfg)
		require.Error(t, err, "%+v", cfg)
	}
}

func TestDistribute(t *testing.T) {
	organisms := []model.Organism{
		{Traits: []int{12, 12, 12}},
		{Traits: []int{12, 12, 1}},
		{Traits: []int{12, 1, 1}},
		{Traits: []int{12, 1, 1, 1, 1}},
		{Traits: []int{1, 1, 1}},
	}
	d := Distribute(organisms, 12)
	require.Equal(t, PurityDistribution{Target: 12, Total: 5, Perfect: 1, High: 1, Medium: 1, Low: 1, Zero: 1}, d)
}
