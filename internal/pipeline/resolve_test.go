package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// measurement builds a record of feature PEPA_2 / P1 in run r1.
func measurement(row int, score float64, hasScore bool, ints ...Intensity) Record {
	return Record{
		Row:             row,
		ProteinName:     "P1",
		PeptideSequence: "PEPA",
		Charge:          "2",
		Run:             "r1",
		IonsScore:       score,
		HasIonsScore:    hasScore,
		Intensities:     ints,
	}
}

func TestResolve_Completeness(t *testing.T) {
	in := []Record{
		measurement(0, 90, true, Observed(1000), Missing),
		measurement(1, 20, true, Observed(5), Observed(6)),
		measurement(2, 20, true, Observed(7), Observed(8)),
	}
	out, notices, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 2)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Row)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeMultipleMeasurements, notices[0].Kind)
	assert.Equal(t, 2, notices[0].Removed)
	assert.Equal(t, 1, notices[0].Total)
}

func TestResolve_Score(t *testing.T) {
	in := []Record{
		measurement(0, 30, true, Observed(5), Observed(6)),
		measurement(1, 20, true, Observed(70), Observed(80)),
	}
	out, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Row)
}

func TestResolve_ScoreSkippedWhenMissing(t *testing.T) {
	in := []Record{
		measurement(0, 0, false, Observed(5), Observed(6)),
		measurement(1, 99, true, Observed(1), Observed(2)),
	}
	out, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Row)
}

func TestResolve_Aggregate(t *testing.T) {
	in := []Record{
		measurement(0, 10, true, Observed(1), Observed(10)),
		measurement(1, 10, true, Observed(6), Observed(6)),
	}

	out, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Row, "max: 10 > 6")

	out, _, err = ResolveMultipleMeasurements(context.Background(), in, AggregateSum, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Row, "sum: 12 > 11")
}

func TestResolve_ExactTieKeepsFirst(t *testing.T) {
	in := []Record{
		measurement(0, 10, true, Observed(5), Observed(6)),
		measurement(1, 10, true, Observed(6), Observed(5)),
	}
	out, notices, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Row)

	require.Len(t, notices, 2)
	assert.Equal(t, NoticeTieBroken, notices[1].Kind)
	assert.Equal(t, 1, notices[1].Total)
}

func TestResolve_AllMissingRows(t *testing.T) {
	in := []Record{
		measurement(0, 10, true, Missing, Missing),
		measurement(1, 12, true, Missing, Missing),
	}
	out, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Row)
}

func TestResolve_SingletonsPassThrough(t *testing.T) {
	a := measurement(0, 10, true, Observed(1))
	b := measurement(1, 10, true, Observed(2))
	b.Run = "r2"
	c := measurement(2, 10, true, Observed(3))
	c.ProteinName = "P2"

	out, notices, err := ResolveMultipleMeasurements(context.Background(), []Record{a, b, c}, AggregateMax, 0)
	require.NoError(t, err)
	assert.Equal(t, []Record{a, b, c}, out)
	assert.Empty(t, notices)
}

func TestResolve_AtMostOnePerGroup(t *testing.T) {
	var in []Record
	row := 0
	for f := range 40 {
		for run := range 3 {
			for dup := range f%4 + 1 {
				in = append(in, Record{
					Row:             row,
					ProteinName:     fmt.Sprintf("P%d", f%7),
					PeptideSequence: fmt.Sprintf("PEP%d", f),
					Charge:          "2",
					Run:             fmt.Sprintf("run%d", run),
					IonsScore:       float64(dup % 2),
					HasIonsScore:    true,
					Intensities:     []Intensity{Observed(float64(dup)), Observed(float64(row))},
				})
				row++
			}
		}
	}

	out, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 4)
	require.NoError(t, err)
	assert.Len(t, out, 40*3)

	seen := make(map[measurementKey]bool)
	prev := -1
	for _, r := range out {
		k := measurementKey{r.featureProtein(), r.Run}
		assert.False(t, seen[k], "duplicate %v", k)
		seen[k] = true
		assert.Greater(t, r.Row, prev, "output must keep input order")
		prev = r.Row
	}

	again, _, err := ResolveMultipleMeasurements(context.Background(), in, AggregateMax, 1)
	require.NoError(t, err)
	assert.Equal(t, out, again, "result must not depend on worker count")
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := []Record{
		measurement(0, 10, true, Observed(1)),
		measurement(1, 10, true, Observed(2)),
	}
	_, _, err := ResolveMultipleMeasurements(ctx, in, AggregateMax, 1)
	require.ErrorIs(t, err, context.Canceled)
}
