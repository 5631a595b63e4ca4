package pipeline

import "fmt"

type psmRunKey struct {
	PSM string
	Run string
}

// FilterIncompleteRuns drops every observation of a (PSM, Run) pair that has
// fewer than nChannels non-missing intensities.
func FilterIncompleteRuns(obs []Observation, nChannels int) ([]Observation, []Notice) {
	counts := make(map[psmRunKey]int)
	for _, o := range obs {
		k := psmRunKey{o.PSM, o.Run}
		if o.Intensity.Valid {
			counts[k]++
		} else if _, ok := counts[k]; !ok {
			counts[k] = 0
		}
	}

	incomplete := 0
	for _, n := range counts {
		if n < nChannels {
			incomplete++
		}
	}

	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if counts[psmRunKey{o.PSM, o.Run}] >= nChannels {
			out = append(out, o)
		}
	}

	if incomplete == 0 {
		return out, nil
	}
	return out, []Notice{{
		Kind:    NoticeIncompleteRunsRemoved,
		Message: fmt.Sprintf("%d PSM/run combinations with missing channel values are removed", incomplete),
		Removed: incomplete,
		Total:   len(counts),
	}}
}

// FilterSingleFeatureProteins drops proteins identified by at most one
// distinct PSM.
func FilterSingleFeatureProteins(obs []Observation) ([]Observation, []Notice) {
	features := make(map[string]map[string]struct{})
	for _, o := range obs {
		set, ok := features[o.ProteinName]
		if !ok {
			set = make(map[string]struct{})
			features[o.ProteinName] = set
		}
		set[o.PSM] = struct{}{}
	}

	drop := make(map[string]bool)
	for protein, set := range features {
		if len(set) <= 1 {
			drop[protein] = true
		}
	}

	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if !drop[o.ProteinName] {
			out = append(out, o)
		}
	}

	if len(drop) == 0 {
		return out, nil
	}
	return out, []Notice{{
		Kind: NoticeSingleFeatureRemoved,
		Message: fmt.Sprintf("%d of %d proteins have only one feature and are removed",
			len(drop), len(features)),
		Removed: len(drop),
		Total:   len(features),
	}}
}
