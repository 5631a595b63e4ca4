package pipeline

import (
	"fmt"

	"github.com/inodb/tmtprep/internal/annotation"
	"github.com/inodb/tmtprep/internal/psm"
)

// JoinAnnotation attaches Condition, BioReplicate and Mixture to every long
// row by (Run, Channel). A pair with no annotation row, or whose Condition
// is missing, is fatal: a notice is returned for each such pair together
// with an *AnnotationError.
//
// Channel labels are rewritten with normalize after the join; a nil
// normalizer leaves them unchanged.
func JoinAnnotation(rows []LongRow, ann *annotation.Table, normalize ChannelNormalizer) ([]Observation, []Notice, error) {
	if normalize == nil {
		normalize = identityChannel
	}

	var (
		missing []annotation.Key
		notices []Notice
	)
	reported := make(map[annotation.Key]bool)
	obs := make([]Observation, 0, len(rows))

	for _, r := range rows {
		e, ok := ann.Lookup(r.Run, r.Channel)
		if !ok || psm.IsMissing(e.Condition) {
			k := annotation.Key{Run: r.Run, Channel: r.Channel}
			if !reported[k] {
				reported[k] = true
				missing = append(missing, k)
				notices = append(notices, Notice{
					Kind:    NoticeMissingAnnotation,
					Message: fmt.Sprintf("condition in run %s and channel %s is missing in the annotation", r.Run, r.Channel),
					Run:     r.Run,
					Channel: r.Channel,
				})
			}
			continue
		}
		obs = append(obs, Observation{
			ProteinName:     r.ProteinName,
			PeptideSequence: r.PeptideSequence,
			Charge:          r.Charge,
			PSM:             PSMID(r.PeptideSequence, r.Charge),
			Channel:         normalize(r.Channel),
			Condition:       e.Condition,
			BioReplicate:    e.BioReplicate,
			Run:             r.Run,
			Mixture:         e.Mixture,
			Intensity:       r.Intensity,
		})
	}

	if len(missing) > 0 {
		return nil, notices, &AnnotationError{Missing: missing}
	}
	return obs, nil, nil
}
