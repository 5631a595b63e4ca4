package pipeline

// Aggregate selects how channel intensities of one PSM row are summarized
// when breaking ties between repeated measurements.
type Aggregate string

// Supported aggregates.
const (
	AggregateMax Aggregate = "max"
	AggregateSum Aggregate = "sum"
)

// Protein identifier column conventions.
const (
	ProteinAccessions       = "Protein.Accessions"
	MasterProteinAccessions = "Master.Protein.Accessions"
)

// DefaultChannelPrefix is stripped from channel labels produced by tools
// that sanitize numeric column names (126 -> X126).
const DefaultChannelPrefix = "X"

// Options configures the PSM-to-feature pipeline.
type Options struct {
	// Fraction combines the fractions of each mixture into one run.
	Fraction bool
	// UseNumProteinsColumn keeps only rows whose protein count is exactly 1.
	UseNumProteinsColumn bool
	// UseUniquePeptide keeps only rows tagged Unique and drops peptides
	// mapping to more than one protein.
	UseUniquePeptide bool
	// SummaryForMultipleRows is the final tie-break aggregate.
	SummaryForMultipleRows Aggregate
	// RemovePSMWithMissingValueWithinRun drops a feature's whole run when
	// any channel is missing.
	RemovePSMWithMissingValueWithinRun bool
	// RemoveProteinWith1Feature drops proteins backed by a single feature.
	RemoveProteinWith1Feature bool
	// WhichProteinID is the preferred protein identifier column.
	WhichProteinID string
	// ChannelPrefix is stripped from output channel labels; empty disables.
	ChannelPrefix string
	// Workers bounds per-group parallelism; 0 means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns the conventional defaults for Proteome Discoverer input.
func DefaultOptions() Options {
	return Options{
		Fraction:                           false,
		UseNumProteinsColumn:               false,
		UseUniquePeptide:                   true,
		SummaryForMultipleRows:             AggregateMax,
		RemovePSMWithMissingValueWithinRun: true,
		RemoveProteinWith1Feature:          false,
		WhichProteinID:                     ProteinAccessions,
		ChannelPrefix:                      DefaultChannelPrefix,
	}
}

// Validate checks option values that have a closed vocabulary.
func (o Options) Validate() error {
	switch o.SummaryForMultipleRows {
	case AggregateMax, AggregateSum:
	default:
		return &ConfigurationError{
			Option:  "summary_for_multiple_rows",
			Value:   string(o.SummaryForMultipleRows),
			Message: "must be max or sum",
		}
	}
	if _, ok := proteinCountColumns[makeName(o.WhichProteinID)]; !ok {
		return &ConfigurationError{
			Option:  "which_proteinid",
			Value:   o.WhichProteinID,
			Message: "must be " + ProteinAccessions + " or " + MasterProteinAccessions,
		}
	}
	if o.Workers < 0 {
		return &ConfigurationError{
			Option:  "workers",
			Message: "must not be negative",
		}
	}
	return nil
}
