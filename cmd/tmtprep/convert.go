package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/tmtprep/internal/duckdb"
	"github.com/inodb/tmtprep/internal/output"
	"github.com/inodb/tmtprep/internal/pipeline"
	"github.com/inodb/tmtprep/internal/psm"
)

// Output formats
const (
	FormatTSV    = "tsv"
	FormatDuckDB = "duckdb"
	FormatSQLite = "sqlite"
)

func newConvertCmd() *cobra.Command {
	var (
		annotationFile string
		outputFile     string
		format         string
	)

	defaults := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "convert <psm-file>",
		Short: "Convert a PSM table into a feature-level long table",
		Long: `Convert PSM-level search engine output (Proteome Discoverer style) into the
annotated long table used for protein-level TMT summarization.

Each PSM row is filtered for shared peptides, resolved to a single
measurement per feature and run, reshaped to one row per channel and joined
with the run/channel annotation.`,
		Example: `  tmtprep convert psms.txt --annotation annotation.csv
  tmtprep convert psms.txt.gz --annotation annotation.csv -o features.tsv
  tmtprep convert psms.txt --annotation annotation.csv --format duckdb -o features.duckdb
  tmtprep convert psms.txt --annotation annotation.csv --fraction --summary-for-multiple-rows sum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if annotationFile == "" {
				return &usageError{err: fmt.Errorf("--annotation is required")}
			}
			return runConvert(cmd.Context(), args[0], annotationFile, outputFile, format, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&annotationFile, "annotation", "a", "", "Run/channel annotation table (Run, Channel, Condition, BioReplicate, Mixture)")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout for tsv)")
	flags.StringVarP(&format, "format", "f", FormatTSV, "Output format: tsv, duckdb, sqlite")

	flags.Bool("fraction", defaults.Fraction, "Combine fractions of each mixture into one run")
	flags.Bool("use-num-proteins-column", defaults.UseNumProteinsColumn, "Keep only PSMs whose protein count column is 1")
	flags.Bool("use-unique-peptide", defaults.UseUniquePeptide, "Keep only unique peptides")
	flags.String("summary-for-multiple-rows", string(defaults.SummaryForMultipleRows), "Tie-break aggregate for repeated measurements: max or sum")
	flags.Bool("remove-psm-with-missing-value-within-run", defaults.RemovePSMWithMissingValueWithinRun, "Drop a feature's run when any channel is missing")
	flags.Bool("remove-protein-with-1-feature", defaults.RemoveProteinWith1Feature, "Drop proteins with a single feature")
	flags.String("which-proteinid", defaults.WhichProteinID, "Protein identifier column: Protein.Accessions or Master.Protein.Accessions")
	flags.String("channel-prefix", defaults.ChannelPrefix, "Prefix stripped from sanitized channel labels (empty disables)")
	flags.Int("workers", defaults.Workers, "Parallel workers (0 = all CPUs)")

	for _, name := range []string{
		"fraction",
		"use-num-proteins-column",
		"use-unique-peptide",
		"summary-for-multiple-rows",
		"remove-psm-with-missing-value-within-run",
		"remove-protein-with-1-feature",
		"which-proteinid",
		"channel-prefix",
		"workers",
	} {
		viper.BindPFlag(viperKey(name), flags.Lookup(name))
	}

	return cmd
}

// viperKey maps a flag name to its config key (use-unique-peptide -> use_unique_peptide).
func viperKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// optionsFromViper builds pipeline options from flags, environment and config file.
func optionsFromViper() pipeline.Options {
	return pipeline.Options{
		Fraction:                           viper.GetBool("fraction"),
		UseNumProteinsColumn:               viper.GetBool("use_num_proteins_column"),
		UseUniquePeptide:                   viper.GetBool("use_unique_peptide"),
		SummaryForMultipleRows:             pipeline.Aggregate(strings.ToLower(viper.GetString("summary_for_multiple_rows"))),
		RemovePSMWithMissingValueWithinRun: viper.GetBool("remove_psm_with_missing_value_within_run"),
		RemoveProteinWith1Feature:          viper.GetBool("remove_protein_with_1_feature"),
		WhichProteinID:                     viper.GetString("which_proteinid"),
		ChannelPrefix:                      viper.GetString("channel_prefix"),
		Workers:                            viper.GetInt("workers"),
	}
}

func runConvert(ctx context.Context, psmFile, annotationFile, outputFile, format string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch format {
	case FormatTSV:
	case FormatDuckDB, FormatSQLite:
		if outputFile == "" {
			return &usageError{err: fmt.Errorf("--output is required for format %s", format)}
		}
	default:
		return &usageError{err: fmt.Errorf("unsupported output format %q (use tsv, duckdb or sqlite)", format)}
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	p, err := pipeline.New(optionsFromViper())
	if err != nil {
		return err
	}
	p.SetLogger(logger)

	annTable, err := psm.ReadTable(annotationFile)
	if err != nil {
		return fmt.Errorf("read annotation: %w", err)
	}
	ann, err := pipeline.LoadAnnotation(annTable)
	if err != nil {
		return err
	}

	psmTable, err := psm.ReadTable(psmFile)
	if err != nil {
		return fmt.Errorf("read psm table: %w", err)
	}
	logger.Info("loaded input",
		zap.String("psm_file", psmFile),
		zap.Int("psm_rows", psmTable.Len()),
		zap.Int("annotation_rows", ann.Len()))

	res, err := p.Run(ctx, psmTable, ann)
	if err != nil {
		return err
	}

	if err := writeResult(res, format, outputFile, psmFile, annotationFile, stdout); err != nil {
		return err
	}

	logger.Info("conversion complete",
		zap.Int("input_rows", res.Summary.InputRows),
		zap.Int("output_rows", res.Summary.OutputRows),
		zap.Int("proteins", res.Summary.Proteins),
		zap.Int("features", res.Summary.Features),
		zap.Int("runs", res.Summary.Runs),
		zap.Int("notices", len(res.Notices)))
	return nil
}

func writeResult(res *pipeline.Result, format, outputFile, psmFile, annotationFile string, stdout io.Writer) error {
	switch format {
	case FormatDuckDB:
		return writeDuckDB(res.Observations, outputFile, psmFile, annotationFile)
	case FormatSQLite:
		sw, err := output.NewSQLiteWriter(outputFile)
		if err != nil {
			return err
		}
		defer sw.Close()
		return pipeline.WriteAll(sw, res.Observations)
	}

	if outputFile == "" || outputFile == "-" {
		return pipeline.WriteAll(output.NewTabWriter(stdout), res.Observations)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := pipeline.WriteAll(output.NewTabWriter(f), res.Observations); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeDuckDB(obs []pipeline.Observation, path, psmFile, annotationFile string) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteObservations(obs); err != nil {
		return fmt.Errorf("write observations: %w", err)
	}
	for role, file := range map[string]string{"psm": psmFile, "annotation": annotationFile} {
		fp, err := duckdb.StatFile(file)
		if err != nil {
			return fmt.Errorf("stat %s file: %w", role, err)
		}
		if err := store.RecordSource(role, fp); err != nil {
			return err
		}
	}
	return nil
}
