package pipeline

import "go.uber.org/zap"

// NoticeKind classifies a non-fatal pipeline event.
type NoticeKind string

// Notice kinds, one per informational condition a stage can report.
const (
	NoticeProteinIDFallback     NoticeKind = "protein_id_fallback"
	NoticeSharedPeptidesRemoved NoticeKind = "shared_peptides_removed"
	NoticeMultipleMeasurements  NoticeKind = "multiple_measurements_resolved"
	NoticeTieBroken             NoticeKind = "tie_broken"
	NoticeMissingAnnotation     NoticeKind = "missing_annotation"
	NoticeIncompleteRunsRemoved NoticeKind = "incomplete_runs_removed"
	NoticeSingleFeatureRemoved  NoticeKind = "single_feature_proteins_removed"
	NoticeFractionsCombined     NoticeKind = "fractions_combined"
)

// Notice is a structured, non-fatal report of something a stage did.
// Only the fields relevant to Kind are set.
type Notice struct {
	Kind    NoticeKind
	Message string

	Column  string
	Run     string
	Channel string
	Mixture string

	Removed int
	Total   int
}

// fields converts the populated notice fields into zap fields.
func (n Notice) fields() []zap.Field {
	fs := []zap.Field{zap.String("kind", string(n.Kind))}
	if n.Column != "" {
		fs = append(fs, zap.String("column", n.Column))
	}
	if n.Run != "" {
		fs = append(fs, zap.String("run", n.Run))
	}
	if n.Channel != "" {
		fs = append(fs, zap.String("channel", n.Channel))
	}
	if n.Mixture != "" {
		fs = append(fs, zap.String("mixture", n.Mixture))
	}
	if n.Removed != 0 || n.Total != 0 {
		fs = append(fs, zap.Int("removed", n.Removed), zap.Int("total", n.Total))
	}
	return fs
}

// Log writes the notice to l at a level matching its kind.
func (n Notice) Log(l *zap.Logger) {
	if n.Kind == NoticeMissingAnnotation {
		l.Warn(n.Message, n.fields()...)
		return
	}
	l.Info(n.Message, n.fields()...)
}
