package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/tmtprep/internal/duckdb"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <duckdb-file>",
		Short: "Summarize a feature table written with --format duckdb",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(args[0], cmd.OutOrStdout())
		},
	}
}

func runSummary(path string, w io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open feature database: %w", err)
	}

	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.SummarizeRuns()
	if err != nil {
		return err
	}
	counts, err := store.ProteinFeatureCounts()
	if err != nil {
		return err
	}

	for _, role := range []string{"psm", "annotation"} {
		fp, ok, err := store.Source(role)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(w, "# %s: %s (%d bytes, modified %s)\n", role, fp.Path, fp.Size, fp.ModTime.Format("2006-01-02 15:04:05"))
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run\tMixture\tProteins\tFeatures\tObservations\tMissing")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", r.Run, r.Mixture, r.Proteins, r.Features, r.Observations, r.Missing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	single := 0
	for _, n := range counts {
		if n == 1 {
			single++
		}
	}
	fmt.Fprintf(w, "\n%d runs, %d proteins (%d with a single feature)\n", len(runs), len(counts), single)
	return nil
}
