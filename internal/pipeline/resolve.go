package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// measurementKey identifies a (feature, protein, run) combination.
type measurementKey struct {
	featureProteinKey
	Run string
}

// resolution is the outcome of consolidating one group of rows.
type resolution struct {
	Keep int // index into the group
	Tied int // rows still tied after all three stages
}

// ResolveMultipleMeasurements keeps at most one row per (feature, protein,
// run). Groups with more than one row are narrowed by
//
//  1. the number of non-missing channel intensities (highest wins),
//  2. the identification score (highest wins), skipped when any
//     candidate lacks a score,
//  3. the aggregate channel intensity (highest wins).
//
// If rows are still tied after stage 3 the earliest input row is kept.
// Output rows keep their input order.
func ResolveMultipleMeasurements(ctx context.Context, records []Record, agg Aggregate, workers int) ([]Record, []Notice, error) {
	index := make(map[measurementKey]int)
	var groups [][]Record
	for _, r := range records {
		k := measurementKey{r.featureProtein(), r.Run}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], r)
	}

	out := make([]Record, 0, len(groups))
	var issues [][]Record
	for _, g := range groups {
		if len(g) == 1 {
			out = append(out, g[0])
			continue
		}
		issues = append(issues, g)
	}

	if len(issues) == 0 {
		return out, nil, nil
	}

	resolved, err := parallelGroups(ctx, issues, workers, func(g []Record) resolution {
		return selectMeasurement(g, agg)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("resolve multiple measurements: %w", err)
	}

	ties := 0
	for i, res := range resolved {
		out = append(out, issues[i][res.Keep])
		if res.Tied > 1 {
			ties++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })

	notices := []Notice{{
		Kind: NoticeMultipleMeasurements,
		Message: fmt.Sprintf("%d feature/run combinations had multiple measurements; one row was kept for each",
			len(issues)),
		Removed: len(records) - len(out),
		Total:   len(issues),
	}}
	if ties > 0 {
		notices = append(notices, Notice{
			Kind: NoticeTieBroken,
			Message: fmt.Sprintf("%d feature/run combinations were still tied after comparing completeness, score and %s intensity; the first row was kept",
				ties, agg),
			Total: ties,
		})
	}
	return out, notices, nil
}

// selectMeasurement applies the three-stage elimination to one group.
func selectMeasurement(group []Record, agg Aggregate) resolution {
	cands := make([]int, len(group))
	for i := range group {
		cands[i] = i
	}

	cands = keepMax(cands, func(i int) float64 {
		return float64(group[i].observedCount())
	})

	allScored := true
	for _, i := range cands {
		if !group[i].HasIonsScore {
			allScored = false
			break
		}
	}
	if allScored {
		cands = keepMax(cands, func(i int) float64 { return group[i].IonsScore })
	}

	cands = keepMax(cands, func(i int) float64 {
		return aggregate(group[i].Intensities, agg)
	})

	// Candidates stay in group order, which is input order.
	return resolution{Keep: cands[0], Tied: len(cands)}
}

// keepMax returns the candidates whose value equals the maximum.
func keepMax(cands []int, value func(int) float64) []int {
	best := math.Inf(-1)
	vals := make([]float64, len(cands))
	for j, i := range cands {
		vals[j] = value(i)
		if vals[j] > best {
			best = vals[j]
		}
	}
	kept := make([]int, 0, len(cands))
	for j, i := range cands {
		if vals[j] == best {
			kept = append(kept, i)
		}
	}
	return kept
}

// aggregate summarizes the non-missing intensities of a row. A row with
// no observed intensity aggregates to -Inf under max and 0 under sum.
func aggregate(values []Intensity, agg Aggregate) float64 {
	switch agg {
	case AggregateSum:
		var s float64
		for _, v := range values {
			if v.Valid {
				s += v.Value
			}
		}
		return s
	default:
		m := math.Inf(-1)
		for _, v := range values {
			if v.Valid && v.Value > m {
				m = v.Value
			}
		}
		return m
	}
}
