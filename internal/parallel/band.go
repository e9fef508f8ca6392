package parallel

// Band is a half-open range of rows [Start, End) processed as one work item.
type Band struct {
	Start int
	End   int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.End - b.Start
}

// Split divides rows into at most parts contiguous, non-overlapping bands of
// near-equal size covering [0, rows). Earlier bands get the remainder rows.
// Returns nil when rows <= 0.
func Split(rows, parts int) []Band {
	if rows <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > rows {
		parts = rows
	}

	bands := make([]Band, parts)
	base, extra := rows/parts, rows%parts
	start := 0
	for i := range parts {
		n := base
		if i < extra {
			n++
		}
		bands[i] = Band{Start: start, End: start + n}
		start += n
	}
	return bands
}

// BandsPerWorker is how many bands each worker gets on a full frame.
// More bands than workers lets stealing even out slow bands.
const BandsPerWorker = 4

// MinBandRows is the smallest band worth scheduling; smaller frames get
// fewer bands.
const MinBandRows = 8

// Plan splits rows for a pool with the given number of workers.
func Plan(rows, workers int) []Band {
	if workers <= 0 {
		workers = 1
	}
	parts := workers * BandsPerWorker
	if maxParts := (rows + MinBandRows - 1) / MinBandRows; parts > maxParts {
		parts = maxParts
	}
	return Split(rows, parts)
}
