package pipeline

import (
	"fmt"
	"strconv"
)

// UniqueQuanInfo is the quantification-quality tag marking peptides that
// are unique to one protein group.
const UniqueQuanInfo = "Unique"

// FilterSharedPeptides removes rows whose peptide maps to more than one
// protein. The protein-count filter runs first, then the Unique-tag filter.
// Each is controlled by its option and the input slice is not modified.
func FilterSharedPeptides(records []Record, useNumProteins, useUniquePeptide bool) ([]Record, []Notice) {
	var notices []Notice
	out := records

	if useNumProteins {
		kept := make([]Record, 0, len(out))
		for _, r := range out {
			if isSingleProtein(r.NumProteins) {
				kept = append(kept, r)
			}
		}
		if removed := len(out) - len(kept); removed > 0 {
			notices = append(notices, Notice{
				Kind:    NoticeSharedPeptidesRemoved,
				Message: fmt.Sprintf("%d PSMs mapped to more than one protein are removed (protein count column)", removed),
				Removed: removed,
				Total:   len(out),
			})
		}
		out = kept
	}

	if useUniquePeptide && hasUniqueTag(out) {
		kept := make([]Record, 0, len(out))
		for _, r := range out {
			if r.QuanInfo == UniqueQuanInfo {
				kept = append(kept, r)
			}
		}

		shared := sharedPeptides(kept)
		final := kept[:0:0]
		for _, r := range kept {
			if !shared[r.PeptideSequence] {
				final = append(final, r)
			}
		}

		if removed := len(out) - len(final); removed > 0 {
			notices = append(notices, Notice{
				Kind:    NoticeSharedPeptidesRemoved,
				Message: fmt.Sprintf("%d PSMs that are not unique or map to more than one protein are removed", removed),
				Removed: removed,
				Total:   len(out),
			})
		}
		out = final
	}

	if len(out) == len(records) {
		// Return a fresh slice even when nothing was removed.
		out = append([]Record(nil), records...)
	}
	return out, notices
}

// isSingleProtein reports whether a protein count cell equals one.
func isSingleProtein(s string) bool {
	if s == "1" {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v == 1
}

func hasUniqueTag(records []Record) bool {
	for _, r := range records {
		if r.QuanInfo == UniqueQuanInfo {
			return true
		}
	}
	return false
}

// sharedPeptides returns the peptide sequences that map to more than one
// distinct protein.
func sharedPeptides(records []Record) map[string]bool {
	proteins := make(map[string]map[string]struct{})
	for _, r := range records {
		set, ok := proteins[r.PeptideSequence]
		if !ok {
			set = make(map[string]struct{})
			proteins[r.PeptideSequence] = set
		}
		set[r.ProteinName] = struct{}{}
	}
	shared := make(map[string]bool)
	for pep, set := range proteins {
		if len(set) > 1 {
			shared[pep] = true
		}
	}
	return shared
}
