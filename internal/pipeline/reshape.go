package pipeline

// Reshape pivots the channel intensities of each record into one LongRow
// per channel and drops exact duplicates, keeping first-seen order.
func Reshape(records []Record, channels []string) []LongRow {
	seen := make(map[LongRow]struct{}, len(records)*len(channels))
	rows := make([]LongRow, 0, len(records)*len(channels))
	for _, r := range records {
		for j, ch := range channels {
			lr := LongRow{
				ProteinName:     r.ProteinName,
				PeptideSequence: r.PeptideSequence,
				Charge:          r.Charge,
				Run:             r.Run,
				Channel:         ch,
			}
			if j < len(r.Intensities) {
				lr.Intensity = r.Intensities[j]
			}
			if _, ok := seen[lr]; ok {
				continue
			}
			seen[lr] = struct{}{}
			rows = append(rows, lr)
		}
	}
	return rows
}
