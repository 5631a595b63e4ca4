package output

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/inodb/tmtprep/internal/pipeline"
)

// SQLiteTable is the table the SQLite writer fills.
const SQLiteTable = "features"

// SQLiteWriter writes observations into a SQLite database, one row per
// observation, inside a single transaction committed by Flush.
type SQLiteWriter struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
}

// NewSQLiteWriter opens or creates the database at path.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteWriter{db: db}, nil
}

// WriteHeader (re)creates the features table and prepares the insert.
func (sw *SQLiteWriter) WriteHeader() error {
	if _, err := sw.db.Exec(`DROP TABLE IF EXISTS ` + SQLiteTable); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := sw.db.Exec(`CREATE TABLE ` + SQLiteTable + ` (
		ProteinName TEXT NOT NULL,
		PeptideSequence TEXT NOT NULL,
		Charge TEXT NOT NULL,
		PSM TEXT NOT NULL,
		Channel TEXT NOT NULL,
		Condition TEXT,
		BioReplicate TEXT,
		Run TEXT NOT NULL,
		Mixture TEXT,
		Intensity REAL
	)`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + SQLiteTable + ` (
		ProteinName, PeptideSequence, Charge, PSM, Channel,
		Condition, BioReplicate, Run, Mixture, Intensity
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	sw.tx, sw.stmt = tx, stmt
	return nil
}

// Write inserts a single observation. Missing intensities are stored as NULL.
func (sw *SQLiteWriter) Write(o *pipeline.Observation) error {
	if sw.stmt == nil {
		return fmt.Errorf("sqlite writer: WriteHeader not called")
	}
	var intensity sql.NullFloat64
	if o.Intensity.Valid {
		intensity = sql.NullFloat64{Float64: o.Intensity.Value, Valid: true}
	}
	_, err := sw.stmt.Exec(
		o.ProteinName, o.PeptideSequence, o.Charge, o.PSM, o.Channel,
		o.Condition, o.BioReplicate, o.Run, o.Mixture, intensity,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// Flush commits the pending transaction.
func (sw *SQLiteWriter) Flush() error {
	if sw.tx == nil {
		return nil
	}
	sw.stmt.Close()
	err := sw.tx.Commit()
	sw.tx, sw.stmt = nil, nil
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close rolls back any uncommitted rows and closes the database.
func (sw *SQLiteWriter) Close() error {
	if sw.tx != nil {
		sw.stmt.Close()
		sw.tx.Rollback()
		sw.tx, sw.stmt = nil, nil
	}
	return sw.db.Close()
}
