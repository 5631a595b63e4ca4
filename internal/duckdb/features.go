package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/tmtprep/internal/pipeline"
)

// WriteObservations replaces the stored feature table with obs, using the
// Appender API for bulk insertion.
func (s *Store) WriteObservations(obs []pipeline.Observation) error {
	if err := s.ClearObservations(); err != nil {
		return err
	}
	if len(obs) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "features")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, o := range obs {
		var intensity any
		if o.Intensity.Valid {
			intensity = o.Intensity.Value
		}
		if err := appender.AppendRow(
			o.ProteinName, o.PeptideSequence, o.Charge, o.PSM, o.Channel,
			o.Condition, o.BioReplicate, o.Run, o.Mixture, intensity,
		); err != nil {
			return fmt.Errorf("append observation: %w", err)
		}
	}

	return appender.Flush()
}

// ClearObservations removes all stored observations.
func (s *Store) ClearObservations() error {
	if _, err := s.db.Exec("DELETE FROM features"); err != nil {
		return fmt.Errorf("clear features: %w", err)
	}
	return nil
}

// Observations returns every stored observation ordered by run, protein,
// PSM and channel.
func (s *Store) Observations() ([]pipeline.Observation, error) {
	rows, err := s.db.Query(`SELECT
		protein_name, peptide_sequence, charge, psm, channel,
		condition, bio_replicate, run, mixture, intensity
		FROM features
		ORDER BY run, protein_name, psm, channel`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var obs []pipeline.Observation
	for rows.Next() {
		var (
			o         pipeline.Observation
			intensity sql.NullFloat64
		)
		if err := rows.Scan(
			&o.ProteinName, &o.PeptideSequence, &o.Charge, &o.PSM, &o.Channel,
			&o.Condition, &o.BioReplicate, &o.Run, &o.Mixture, &intensity,
		); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		if intensity.Valid {
			o.Intensity = pipeline.Observed(intensity.Float64)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return obs, nil
}

// RunSummary counts what a single run contributes to the feature table.
type RunSummary struct {
	Run          string
	Mixture      string
	Proteins     int64
	Features     int64
	Observations int64
	Missing      int64
}

// SummarizeRuns returns per-run protein, feature and missing-value counts.
func (s *Store) SummarizeRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT
		run,
		min(mixture),
		count(DISTINCT protein_name),
		count(DISTINCT psm),
		count(*),
		count(*) FILTER (WHERE intensity IS NULL)
		FROM features
		GROUP BY run
		ORDER BY run`)
	if err != nil {
		return nil, fmt.Errorf("summarize runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.Run, &rs.Mixture, &rs.Proteins, &rs.Features, &rs.Observations, &rs.Missing); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summaries: %w", err)
	}
	return out, nil
}

// ProteinFeatureCounts returns the number of distinct PSMs per protein.
func (s *Store) ProteinFeatureCounts() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT protein_name, count(DISTINCT psm) FROM features GROUP BY protein_name`)
	if err != nil {
		return nil, fmt.Errorf("count protein features: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			protein string
			n       int64
		)
		if err := rows.Scan(&protein, &n); err != nil {
			return nil, fmt.Errorf("scan protein count: %w", err)
		}
		counts[protein] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protein counts: %w", err)
	}
	return counts, nil
}
