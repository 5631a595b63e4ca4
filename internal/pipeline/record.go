package pipeline

// Intensity is a reporter-ion intensity that may be missing.
type Intensity struct {
	Value float64
	Valid bool
}

// Missing is the missing intensity.
var Missing = Intensity{}

// Observed returns a present intensity.
func Observed(v float64) Intensity {
	return Intensity{Value: v, Valid: true}
}

// Record is one PSM row projected onto the canonical schema. Intensities
// are aligned with the pipeline's channel list.
type Record struct {
	ProteinName     string
	NumProteins     string
	PeptideSequence string
	Charge          string
	IonsScore       float64
	HasIonsScore    bool
	Run             string
	QuanInfo        string
	Intensities     []Intensity

	// Row is the zero-based position of the row in the input table.
	Row int
}

// featureProteinKey identifies rows of one feature and protein (fea2).
type featureProteinKey struct {
	PeptideSequence string
	Charge          string
	ProteinName     string
}

func (r *Record) featureProtein() featureProteinKey {
	return featureProteinKey{r.PeptideSequence, r.Charge, r.ProteinName}
}

// observedCount returns the number of non-missing channel intensities.
func (r *Record) observedCount() int {
	n := 0
	for _, in := range r.Intensities {
		if in.Valid {
			n++
		}
	}
	return n
}

// LongRow is one (record, channel) pair after reshaping.
type LongRow struct {
	ProteinName     string
	PeptideSequence string
	Charge          string
	Run             string
	Channel         string
	Intensity       Intensity
}

// Observation is one row of the feature-level output table.
type Observation struct {
	ProteinName     string
	PeptideSequence string
	Charge          string
	PSM             string
	Channel         string
	Condition       string
	BioReplicate    string
	Run             string
	Mixture         string
	Intensity       Intensity
}

// PSMID derives the feature identifier used downstream.
func PSMID(peptide, charge string) string {
	return peptide + "_" + charge
}

// dedupObservations removes exact duplicate observations, keeping the
// first occurrence.
func dedupObservations(obs []Observation) []Observation {
	seen := make(map[Observation]struct{}, len(obs))
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
