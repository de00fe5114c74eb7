package history

import "time"

const (
	// EntryInterval is the device's fixed sampling cadence. The on-device
	// clock in the day/time columns is truncated and ambiguous, so
	// absolute timestamps are reconstructed from the file creation time
	// instead, assuming one sample per minute.
	EntryInterval = time.Minute

	correctedDayFormat  = "02/01/2006"
	correctedTimeFormat = "15:04:05"
)

// CorrectDates reconstructs absolute timestamps for history entries by
// anchoring the LAST entry of the slice to the file creation time and
// stepping back one sampling interval per entry. The input is returned
// unchanged when there is nothing to anchor to: no file date, or an
// empty history. Otherwise a new slice is returned where every entry
// carries corrected day/time strings, keeps a copy of the raw device
// fields, and is flagged as corrected.
func CorrectDates(entries []Entry, fileDate *time.Time) []Entry {
	if fileDate == nil || len(entries) == 0 {
		return entries
	}

	corrected := make([]Entry, len(entries))
	for i, entry := range entries {
		ts := fileDate.Add(-time.Duration(len(entries)-1-i) * EntryInterval)
		entry.CorrectedDay = ts.Format(correctedDayFormat)
		entry.CorrectedTime = ts.Format(correctedTimeFormat)
		entry.OriginalDay = entry.Day
		entry.OriginalTime = entry.Time
		entry.UseCorrectedDate = true
		corrected[i] = entry
	}
	return corrected
}
