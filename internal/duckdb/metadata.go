package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// RecordSource stores the fingerprint of an input file under role
// (e.g. "psm", "annotation"), replacing any earlier entry.
func (s *Store) RecordSource(role string, fp FileFingerprint) error {
	if _, err := s.db.Exec(`DELETE FROM sources WHERE role = ?`, role); err != nil {
		return fmt.Errorf("clear source %s: %w", role, err)
	}
	if _, err := s.db.Exec(`INSERT INTO sources (role, path, size, mod_time) VALUES (?, ?, ?, ?)`,
		role, fp.Path, fp.Size, fp.ModTime.UTC()); err != nil {
		return fmt.Errorf("record source %s: %w", role, err)
	}
	return nil
}

// Source returns the fingerprint recorded under role.
func (s *Store) Source(role string) (FileFingerprint, bool, error) {
	var fp FileFingerprint
	err := s.db.QueryRow(`SELECT path, size, mod_time FROM sources WHERE role = ?`, role).
		Scan(&fp.Path, &fp.Size, &fp.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query source %s: %w", role, err)
	}
	return fp, true, nil
}
