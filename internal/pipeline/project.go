package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/tmtprep/internal/psm"
)

// CanonicalColumns returns the canonical names of the table's columns in
// header order.
func CanonicalColumns(tbl *psm.Table) []string {
	cols := make([]string, len(tbl.Header))
	for i, h := range tbl.Header {
		cols[i] = makeName(h)
	}
	return cols
}

// canonicalIndex maps canonical column names to header positions.
// The first column wins when two labels share a canonical name.
func canonicalIndex(tbl *psm.Table) map[string]int {
	idx := make(map[string]int, len(tbl.Header))
	for i, c := range CanonicalColumns(tbl) {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}

// channelColumn locates the column holding a channel. The label is tried
// verbatim, then in canonical form, then after normalization.
func channelColumn(tbl *psm.Table, canon map[string]int, channel string, normalize ChannelNormalizer) int {
	if i := tbl.Index(channel); i >= 0 {
		return i
	}
	if i, ok := canon[makeName(channel)]; ok {
		return i
	}
	if normalize != nil {
		if i := tbl.Index(normalize(channel)); i >= 0 {
			return i
		}
	}
	return -1
}

// Project subsets the wide PSM table to the canonical record schema.
// Channels are matched to columns by annotation label. The protein count
// column is optional; its absence leaves NumProteins empty.
func Project(tbl *psm.Table, schema Schema, channels []string, normalize ChannelNormalizer) ([]Record, error) {
	canon := canonicalIndex(tbl)

	required := []string{schema.ProteinIDColumn, ColPeptideSequence, ColCharge, ColIonsScore, ColRun, ColQuanInfo}
	cols := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := canon[name]
		if !ok {
			return nil, &SchemaError{Column: name, Message: "required column not found in header"}
		}
		cols[name] = i
	}
	countIdx, hasCount := canon[schema.ProteinCountColumn]

	chanIdx := make([]int, len(channels))
	for j, ch := range channels {
		chanIdx[j] = channelColumn(tbl, canon, ch, normalize)
		if chanIdx[j] < 0 {
			return nil, &SchemaError{Column: ch, Message: "channel from annotation not found in header"}
		}
	}

	records := make([]Record, 0, tbl.Len())
	for i, row := range tbl.Rows {
		rec := Record{
			ProteinName:     strings.TrimSpace(row[cols[schema.ProteinIDColumn]]),
			PeptideSequence: strings.TrimSpace(row[cols[ColPeptideSequence]]),
			Charge:          strings.TrimSpace(row[cols[ColCharge]]),
			Run:             strings.TrimSpace(row[cols[ColRun]]),
			QuanInfo:        strings.TrimSpace(row[cols[ColQuanInfo]]),
			Intensities:     make([]Intensity, len(channels)),
			Row:             i,
		}
		if hasCount {
			rec.NumProteins = strings.TrimSpace(row[countIdx])
		}

		score, ok, err := parseOptionalFloat(row[cols[ColIonsScore]])
		if err != nil {
			return nil, &SchemaError{Column: ColIonsScore, Message: fmt.Sprintf("row %d: %v", i+1, err)}
		}
		rec.IonsScore, rec.HasIonsScore = score, ok

		for j, ci := range chanIdx {
			v, ok, err := parseOptionalFloat(row[ci])
			if err != nil {
				return nil, &SchemaError{Column: channels[j], Message: fmt.Sprintf("row %d: %v", i+1, err)}
			}
			if ok {
				rec.Intensities[j] = Observed(v)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseOptionalFloat parses a numeric cell; missing markers yield ok=false.
func parseOptionalFloat(s string) (float64, bool, error) {
	if psm.IsMissing(s) {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", s)
	}
	return v, true, nil
}
