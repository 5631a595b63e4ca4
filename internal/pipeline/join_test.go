package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/tmtprep/internal/annotation"
)

func twoChannelAnnotation() *annotation.Table {
	return annotation.New([]annotation.Entry{
		{Run: "r1", Channel: "X126", Condition: "Control", BioReplicate: "S1", Mixture: "M1"},
		{Run: "r1", Channel: "X127N", Condition: "Treated", BioReplicate: "S2", Mixture: "M1"},
	})
}

func TestReshape(t *testing.T) {
	recs := []Record{
		{ProteinName: "P1", PeptideSequence: "PEPA", Charge: "2", Run: "r1",
			Intensities: []Intensity{Observed(1), Missing}},
		{ProteinName: "P1", PeptideSequence: "PEPA", Charge: "2", Run: "r1",
			Intensities: []Intensity{Observed(1), Missing}},
		{ProteinName: "P2", PeptideSequence: "PEPB", Charge: "3", Run: "r1",
			Intensities: []Intensity{Observed(3), Observed(4)}},
	}

	long := Reshape(recs, []string{"X126", "X127N"})
	require.Len(t, long, 4)
	assert.Equal(t, LongRow{ProteinName: "P1", PeptideSequence: "PEPA", Charge: "2", Run: "r1",
		Channel: "X126", Intensity: Observed(1)}, long[0])
	assert.Equal(t, "X127N", long[1].Channel)
	assert.False(t, long[1].Intensity.Valid)
	assert.Equal(t, Observed(4), long[3].Intensity)
}

func TestJoinAnnotation(t *testing.T) {
	long := []LongRow{
		{ProteinName: "P1", PeptideSequence: "PEPA", Charge: "2", Run: "r1", Channel: "X126", Intensity: Observed(1)},
		{ProteinName: "P1", PeptideSequence: "PEPA", Charge: "2", Run: "r1", Channel: "X127N", Intensity: Missing},
	}

	obs, notices, err := JoinAnnotation(long, twoChannelAnnotation(), StripChannelPrefix("X"))
	require.NoError(t, err)
	assert.Empty(t, notices)
	require.Len(t, obs, len(long))

	assert.Equal(t, Observation{
		ProteinName:     "P1",
		PeptideSequence: "PEPA",
		Charge:          "2",
		PSM:             "PEPA_2",
		Channel:         "126",
		Condition:       "Control",
		BioReplicate:    "S1",
		Run:             "r1",
		Mixture:         "M1",
		Intensity:       Observed(1),
	}, obs[0])
	assert.Equal(t, "127N", obs[1].Channel)
	assert.Equal(t, "Treated", obs[1].Condition)
}

func TestJoinAnnotation_NilNormalizer(t *testing.T) {
	long := []LongRow{{Run: "r1", Channel: "X126", PeptideSequence: "A", Charge: "1"}}
	obs, _, err := JoinAnnotation(long, twoChannelAnnotation(), nil)
	require.NoError(t, err)
	assert.Equal(t, "X126", obs[0].Channel)
}

func TestJoinAnnotation_MissingPairs(t *testing.T) {
	long := []LongRow{
		{Run: "r1", Channel: "X126"},
		{Run: "r2", Channel: "X126"},
		{Run: "r2", Channel: "X127N"},
		{Run: "r2", Channel: "X126"},
	}

	obs, notices, err := JoinAnnotation(long, twoChannelAnnotation(), nil)
	assert.Nil(t, obs)

	var ae *AnnotationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []annotation.Key{
		{Run: "r2", Channel: "X126"},
		{Run: "r2", Channel: "X127N"},
	}, ae.Missing)
	assert.Contains(t, ae.Error(), "r2/X127N")

	require.Len(t, notices, 2)
	for _, n := range notices {
		assert.Equal(t, NoticeMissingAnnotation, n.Kind)
		assert.Equal(t, "r2", n.Run)
	}
}

func TestJoinAnnotation_MissingCondition(t *testing.T) {
	ann := annotation.New([]annotation.Entry{
		{Run: "r1", Channel: "126", Condition: "NA", BioReplicate: "S1", Mixture: "M1"},
	})
	_, _, err := JoinAnnotation([]LongRow{{Run: "r1", Channel: "126"}}, ann, nil)
	var ae *AnnotationError
	require.ErrorAs(t, err, &ae)
}
