package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/tmtprep/internal/pipeline"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func observation(protein, psm, channel, run string, in pipeline.Intensity) pipeline.Observation {
	return pipeline.Observation{
		ProteinName:     protein,
		PeptideSequence: psm[:len(psm)-2],
		Charge:          psm[len(psm)-1:],
		PSM:             psm,
		Channel:         channel,
		Condition:       "Control",
		BioReplicate:    "S1",
		Run:             run,
		Mixture:         "M1",
		Intensity:       in,
	}
}

func testObservations() []pipeline.Observation {
	return []pipeline.Observation{
		observation("P1", "PEPA_2", "126", "r1", pipeline.Observed(10)),
		observation("P1", "PEPA_2", "127N", "r1", pipeline.Missing),
		observation("P1", "PEPB_3", "126", "r1", pipeline.Observed(30)),
		observation("P2", "PEPC_2", "126", "r2", pipeline.Observed(40)),
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "features.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestWriteAndReadObservations(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteObservations(testObservations()))

	obs, err := s.Observations()
	require.NoError(t, err)
	require.Len(t, obs, 4)

	assert.Equal(t, testObservations()[0], obs[0])
	assert.Equal(t, "127N", obs[1].Channel)
	assert.False(t, obs[1].Intensity.Valid)
	assert.Equal(t, "r2", obs[3].Run)
}

func TestWriteObservations_Replaces(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteObservations(testObservations()))
	require.NoError(t, s.WriteObservations(testObservations()[:1]))

	obs, err := s.Observations()
	require.NoError(t, err)
	assert.Len(t, obs, 1)

	require.NoError(t, s.WriteObservations(nil))
	obs, err = s.Observations()
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestSummarizeRuns(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteObservations(testObservations()))

	summaries, err := s.SummarizeRuns()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, RunSummary{Run: "r1", Mixture: "M1", Proteins: 1, Features: 2, Observations: 3, Missing: 1}, summaries[0])
	assert.Equal(t, RunSummary{Run: "r2", Mixture: "M1", Proteins: 1, Features: 1, Observations: 1, Missing: 0}, summaries[1])
}

func TestProteinFeatureCounts(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteObservations(testObservations()))

	counts, err := s.ProteinFeatureCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"P1": 2, "P2": 1}, counts)
}

func TestRecordSource(t *testing.T) {
	s := openInMemory(t)

	_, ok, err := s.Source("psm")
	require.NoError(t, err)
	assert.False(t, ok)

	fp := FileFingerprint{Path: "/data/psm.txt", Size: 1234, ModTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, s.RecordSource("psm", fp))
	fp.Size = 4321
	require.NoError(t, s.RecordSource("psm", fp))

	got, ok, err := s.Source("psm")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fp.Path, got.Path)
	assert.Equal(t, int64(4321), got.Size)
	assert.True(t, fp.ModTime.Equal(got.ModTime))
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), fp.Size)
	assert.Equal(t, path, fp.Path)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
