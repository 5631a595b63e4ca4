package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/tmtprep/internal/pipeline"
)

func sampleObservations() []pipeline.Observation {
	return []pipeline.Observation{
		{
			ProteinName:     "P04637",
			PeptideSequence: "[K].ELNEALELK.[D]",
			Charge:          "2",
			PSM:             "[K].ELNEALELK.[D]_2",
			Channel:         "126",
			Condition:       "Control",
			BioReplicate:    "S1",
			Run:             "f1.raw",
			Mixture:         "M1",
			Intensity:       pipeline.Observed(12345.5),
		},
		{
			ProteinName:     "P04637",
			PeptideSequence: "[K].ELNEALELK.[D]",
			Charge:          "2",
			PSM:             "[K].ELNEALELK.[D]_2",
			Channel:         "127N",
			Condition:       "Treated",
			BioReplicate:    "S2",
			Run:             "f1.raw",
			Mixture:         "M1",
			Intensity:       pipeline.Missing,
		},
	}
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, "ProteinName\tPeptideSequence\tCharge\tPSM\tChannel\tCondition\tBioReplicate\tRun\tMixture\tIntensity\n", buf.String())
}

func TestTabWriter_WriteAll(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, pipeline.WriteAll(NewTabWriter(&buf), sampleObservations()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, len(Columns))
	assert.Equal(t, "P04637", fields[0])
	assert.Equal(t, "[K].ELNEALELK.[D]_2", fields[3])
	assert.Equal(t, "126", fields[4])
	assert.Equal(t, "12345.5", fields[9])

	fields = strings.Split(lines[2], "\t")
	assert.Equal(t, "127N", fields[4])
	assert.Equal(t, MissingValue, fields[9])
}

func TestFormatIntensity(t *testing.T) {
	assert.Equal(t, "NA", FormatIntensity(pipeline.Missing))
	assert.Equal(t, "100", FormatIntensity(pipeline.Observed(100)))
	assert.Equal(t, "0.25", FormatIntensity(pipeline.Observed(0.25)))
	assert.Equal(t, "1.5e+07", FormatIntensity(pipeline.Observed(1.5e7)))
}
