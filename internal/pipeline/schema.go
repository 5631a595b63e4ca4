package pipeline

import (
	"fmt"
	"strings"
)

// Canonical (R-style) names of the non-channel PSM columns.
const (
	ColPeptideSequence = "Annotated.Sequence"
	ColCharge          = "Charge"
	ColIonsScore       = "Ions.Score"
	ColRun             = "Spectrum.File"
	ColQuanInfo        = "Quan.Info"
)

// proteinCountColumns maps each protein identifier column to the column
// carrying the number of proteins it lists.
var proteinCountColumns = map[string]string{
	ProteinAccessions:       "X..Proteins",
	MasterProteinAccessions: "X..Protein.Groups",
}

// Schema names the protein columns chosen for a PSM table.
type Schema struct {
	ProteinIDColumn    string
	ProteinCountColumn string
}

// ResolveSchema picks the protein identifier column and its companion
// count column. columns holds the canonical names present in the input.
// If the preferred column is absent but the alternate exists the alternate
// is used and a notice is returned.
func ResolveSchema(preference string, columns []string) (Schema, []Notice, error) {
	pref := makeName(preference)
	countCol, ok := proteinCountColumns[pref]
	if !ok {
		return Schema{}, nil, &ConfigurationError{
			Option:  "which_proteinid",
			Value:   preference,
			Message: "must be " + ProteinAccessions + " or " + MasterProteinAccessions,
		}
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	if present[pref] {
		return Schema{ProteinIDColumn: pref, ProteinCountColumn: countCol}, nil, nil
	}

	alt := ProteinAccessions
	if pref == ProteinAccessions {
		alt = MasterProteinAccessions
	}
	if present[alt] {
		n := Notice{
			Kind:    NoticeProteinIDFallback,
			Message: fmt.Sprintf("%s column is not available, using %s instead", pref, alt),
			Column:  alt,
		}
		return Schema{ProteinIDColumn: alt, ProteinCountColumn: proteinCountColumns[alt]}, []Notice{n}, nil
	}

	return Schema{}, nil, &SchemaError{
		Column:  pref,
		Message: fmt.Sprintf("neither %s nor %s is present in the input", ProteinAccessions, MasterProteinAccessions),
	}
}

// makeName converts a column label to the syntactically valid form used by
// R's make.names: an "X" is prepended when the label does not start with a
// letter (or a dot not followed by a digit), and every character other than
// letters, digits, dot and underscore becomes a dot.
// "# Proteins" -> "X..Proteins", "Annotated Sequence" -> "Annotated.Sequence",
// "126" -> "X126".
func makeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "X"
	}

	var b strings.Builder
	if needsPrefix(s) {
		b.WriteByte('X')
	}
	for _, r := range s {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func needsPrefix(s string) bool {
	c := s[0]
	switch {
	case isLetter(rune(c)):
		return false
	case c == '.':
		return len(s) > 1 && s[1] >= '0' && s[1] <= '9'
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameRune(r rune) bool {
	return isLetter(r) || (r >= '0' && r <= '9') || r == '.' || r == '_'
}
