package pipeline

import (
	"context"
	"fmt"
)

// CombinedMixture replaces the Mixture of every observation once fractions
// have been combined.
const CombinedMixture = "Mixture"

type psmProteinKey struct {
	PSM         string
	ProteinName string
}

// mixtureResult is the outcome of combining the fractions of one mixture.
type mixtureResult struct {
	Observations []Observation
	Notice       *Notice
}

// CombineFractions collapses the fraction runs of each mixture into one run
// named after the mixture. Missing intensities are dropped, and a
// (PSM, protein) measured in more than one fraction of the same mixture is
// removed from that mixture entirely.
func CombineFractions(ctx context.Context, obs []Observation, workers int) ([]Observation, []Notice, error) {
	index := make(map[string]int)
	var mixtures [][]Observation
	for _, o := range obs {
		mi, ok := index[o.Mixture]
		if !ok {
			mi = len(mixtures)
			index[o.Mixture] = mi
			mixtures = append(mixtures, nil)
		}
		mixtures[mi] = append(mixtures[mi], o)
	}

	results, err := parallelGroups(ctx, mixtures, workers, combineMixture)
	if err != nil {
		return nil, nil, fmt.Errorf("combine fractions: %w", err)
	}

	var (
		out     []Observation
		notices []Notice
	)
	for _, r := range results {
		out = append(out, r.Observations...)
		if r.Notice != nil {
			notices = append(notices, *r.Notice)
		}
	}
	return dedupObservations(out), notices, nil
}

// combineMixture combines the fractions of a single mixture.
func combineMixture(obs []Observation) mixtureResult {
	if len(obs) == 0 {
		return mixtureResult{}
	}
	mixture := obs[0].Mixture

	present := make([]Observation, 0, len(obs))
	runs := make(map[psmProteinKey]map[string]struct{})
	fractions := make(map[string]struct{})
	for _, o := range obs {
		if !o.Intensity.Valid {
			continue
		}
		present = append(present, o)
		k := psmProteinKey{o.PSM, o.ProteinName}
		set, ok := runs[k]
		if !ok {
			set = make(map[string]struct{})
			runs[k] = set
		}
		set[o.Run] = struct{}{}
		fractions[o.Run] = struct{}{}
	}

	shared := 0
	for _, set := range runs {
		if len(set) > 1 {
			shared++
		}
	}

	combined := make([]Observation, 0, len(present))
	for _, o := range present {
		if len(runs[psmProteinKey{o.PSM, o.ProteinName}]) > 1 {
			continue
		}
		o.Run = mixture
		o.Mixture = CombinedMixture
		combined = append(combined, o)
	}

	res := mixtureResult{Observations: combined}
	if shared > 0 {
		res.Notice = &Notice{
			Kind: NoticeFractionsCombined,
			Message: fmt.Sprintf("%d PSMs measured in more than one of %d fractions of mixture %s are removed",
				shared, len(fractions), mixture),
			Mixture: mixture,
			Removed: shared,
			Total:   len(runs),
		}
	}
	return res
}
