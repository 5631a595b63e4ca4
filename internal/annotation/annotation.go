// Package annotation loads the run/channel annotation that maps every
// (Run, Channel) pair of a TMT experiment to its Condition, BioReplicate
// and Mixture.
package annotation

import (
	"fmt"
	"strings"

	"github.com/inodb/tmtprep/internal/psm"
)

// Annotation column names.
const (
	ColRun          = "Run"
	ColChannel      = "Channel"
	ColCondition    = "Condition"
	ColBioReplicate = "BioReplicate"
	ColMixture      = "Mixture"
)

// RequiredColumns lists the columns every annotation table must carry.
var RequiredColumns = []string{ColRun, ColChannel, ColCondition, ColBioReplicate, ColMixture}

// Entry is one annotation row.
type Entry struct {
	Run          string
	Channel      string
	Condition    string
	BioReplicate string
	Mixture      string
}

// Key identifies an annotation entry.
type Key struct {
	Run     string
	Channel string
}

// Table is a validated annotation table with (Run, Channel) lookup.
type Table struct {
	Entries []Entry

	byKey map[Key]Entry
}

// MissingColumnsError is returned when required annotation columns are absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("annotation is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// New builds a table from entries. When the same (Run, Channel) pair
// appears more than once the first entry wins.
func New(entries []Entry) *Table {
	t := &Table{
		Entries: entries,
		byKey:   make(map[Key]Entry, len(entries)),
	}
	for _, e := range entries {
		k := Key{Run: e.Run, Channel: e.Channel}
		if _, ok := t.byKey[k]; !ok {
			t.byKey[k] = e
		}
	}
	return t
}

// FromTable converts a parsed wide table into an annotation table.
func FromTable(tbl *psm.Table) (*Table, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if !tbl.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	entries := make([]Entry, 0, tbl.Len())
	for i := range tbl.Rows {
		entries = append(entries, Entry{
			Run:          strings.TrimSpace(tbl.Value(i, ColRun)),
			Channel:      strings.TrimSpace(tbl.Value(i, ColChannel)),
			Condition:    strings.TrimSpace(tbl.Value(i, ColCondition)),
			BioReplicate: strings.TrimSpace(tbl.Value(i, ColBioReplicate)),
			Mixture:      strings.TrimSpace(tbl.Value(i, ColMixture)),
		})
	}
	return New(entries), nil
}

// Load reads and validates an annotation file.
func Load(path string) (*Table, error) {
	tbl, err := psm.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("read annotation: %w", err)
	}
	return FromTable(tbl)
}

// Lookup returns the entry for a (Run, Channel) pair.
func (t *Table) Lookup(run, channel string) (Entry, bool) {
	e, ok := t.byKey[Key{Run: run, Channel: channel}]
	return e, ok
}

// Channels returns the distinct channels in first-seen order.
func (t *Table) Channels() []string {
	seen := make(map[string]bool)
	var channels []string
	for _, e := range t.Entries {
		if !seen[e.Channel] {
			seen[e.Channel] = true
			channels = append(channels, e.Channel)
		}
	}
	return channels
}

// Runs returns the distinct runs in first-seen order.
func (t *Table) Runs() []string {
	seen := make(map[string]bool)
	var runs []string
	for _, e := range t.Entries {
		if !seen[e.Run] {
			seen[e.Run] = true
			runs = append(runs, e.Run)
		}
	}
	return runs
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.Entries)
}
