// Package pipeline converts PSM-level search engine output into the
// feature-level long table used for protein-level TMT summarization.
//
// Stages run in a fixed order: schema resolution, column projection,
// shared-peptide filtering, multiple-measurement resolution, reshaping,
// annotation join, within-run completeness filtering, single-feature
// protein filtering and fraction combination. Each stage returns a new
// table; notices describing what a stage removed are collected in Result.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/tmtprep/internal/annotation"
	"github.com/inodb/tmtprep/internal/psm"
)

// Pipeline runs the PSM-to-feature conversion.
type Pipeline struct {
	opts      Options
	normalize ChannelNormalizer
	logger    *zap.Logger
}

// Result holds the feature-level table and everything reported on the way.
type Result struct {
	Observations []Observation
	Notices      []Notice
	Channels     []string
	Schema       Schema
	Summary      Summary
}

// Summary counts what went in and what came out.
type Summary struct {
	InputRows  int
	OutputRows int
	Proteins   int
	Features   int
	Runs       int
}

// New creates a pipeline after validating opts.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		opts:      opts,
		normalize: StripChannelPrefix(opts.ChannelPrefix),
		logger:    zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for notices and stage progress.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetChannelNormalizer overrides the channel label normalization.
func (p *Pipeline) SetChannelNormalizer(fn ChannelNormalizer) {
	p.normalize = fn
}

// Options returns the pipeline configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// LoadAnnotation validates a parsed annotation table. Missing required
// columns are reported as a *ConfigurationError.
func LoadAnnotation(tbl *psm.Table) (*annotation.Table, error) {
	ann, err := annotation.FromTable(tbl)
	if err != nil {
		var mce *annotation.MissingColumnsError
		if errors.As(err, &mce) {
			return nil, &ConfigurationError{Option: "annotation", Err: err}
		}
		return nil, err
	}
	return ann, nil
}

// Run converts the wide PSM table into the annotated long table. Any
// error aborts the run without partial output.
func (p *Pipeline) Run(ctx context.Context, tbl *psm.Table, ann *annotation.Table) (*Result, error) {
	res := &Result{Summary: Summary{InputRows: tbl.Len()}}
	note := func(ns []Notice) {
		for _, n := range ns {
			n.Log(p.logger)
		}
		res.Notices = append(res.Notices, ns...)
	}

	channels := ann.Channels()
	if len(channels) == 0 {
		return nil, &ConfigurationError{Option: "annotation", Message: "no channels annotated"}
	}
	res.Channels = channels

	schema, ns, err := ResolveSchema(p.opts.WhichProteinID, CanonicalColumns(tbl))
	if err != nil {
		return nil, err
	}
	note(ns)
	res.Schema = schema

	if p.opts.UseNumProteinsColumn {
		if _, ok := canonicalIndex(tbl)[schema.ProteinCountColumn]; !ok {
			return nil, &SchemaError{
				Column:  schema.ProteinCountColumn,
				Message: "required by use_num_proteins_column but not found in header",
			}
		}
	}

	records, err := Project(tbl, schema, channels, p.normalize)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("projected PSM table", zap.Int("rows", len(records)), zap.Int("channels", len(channels)))

	records, ns = FilterSharedPeptides(records, p.opts.UseNumProteinsColumn, p.opts.UseUniquePeptide)
	note(ns)
	p.logger.Debug("filtered shared peptides", zap.Int("rows", len(records)))

	records, ns, err = ResolveMultipleMeasurements(ctx, records, p.opts.SummaryForMultipleRows, p.opts.Workers)
	if err != nil {
		return nil, err
	}
	note(ns)
	p.logger.Debug("resolved multiple measurements", zap.Int("rows", len(records)))

	long := Reshape(records, channels)
	p.logger.Debug("reshaped to long format", zap.Int("rows", len(long)))

	obs, ns, err := JoinAnnotation(long, ann, p.normalize)
	note(ns)
	if err != nil {
		return nil, err
	}

	if p.opts.RemovePSMWithMissingValueWithinRun {
		obs, ns = FilterIncompleteRuns(obs, len(channels))
		note(ns)
		p.logger.Debug("filtered incomplete runs", zap.Int("rows", len(obs)))
	}

	if p.opts.RemoveProteinWith1Feature {
		obs, ns = FilterSingleFeatureProteins(obs)
		note(ns)
		p.logger.Debug("filtered single-feature proteins", zap.Int("rows", len(obs)))
	}

	if p.opts.Fraction {
		obs, ns, err = CombineFractions(ctx, obs, p.opts.Workers)
		if err != nil {
			return nil, err
		}
		note(ns)
		p.logger.Debug("combined fractions", zap.Int("rows", len(obs)))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	res.Observations = obs
	res.Summary = summarize(res.Summary.InputRows, obs)
	return res, nil
}

func summarize(inputRows int, obs []Observation) Summary {
	proteins := make(map[string]struct{})
	features := make(map[string]struct{})
	runs := make(map[string]struct{})
	for _, o := range obs {
		proteins[o.ProteinName] = struct{}{}
		features[o.PSM] = struct{}{}
		runs[o.Run] = struct{}{}
	}
	return Summary{
		InputRows:  inputRows,
		OutputRows: len(obs),
		Proteins:   len(proteins),
		Features:   len(features),
		Runs:       len(runs),
	}
}

// ObservationWriter defines the interface for writing the output table.
type ObservationWriter interface {
	WriteHeader() error
	Write(o *Observation) error
	Flush() error
}

// WriteAll writes a header and every observation to w, then flushes.
func WriteAll(w ObservationWriter, obs []Observation) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range obs {
		if err := w.Write(&obs[i]); err != nil {
			return fmt.Errorf("write observation: %w", err)
		}
	}
	return w.Flush()
}
