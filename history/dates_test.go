package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectDatesAnchorsLastEntry(t *testing.T) {
	entries := []Entry{
		{Day: "01/01", Time: "10:00:00"},
		{Day: "01/01", Time: "10:01:00"},
		{Day: "01/01", Time: "10:02:00"},
	}
	fileDate := time.Date(2024, time.January, 15, 14, 30, 0, 0, time.Local)

	corrected := CorrectDates(entries, &fileDate)

	require.Len(t, corrected, 3)
	assert.Equal(t, "14:28:00", corrected[0].CorrectedTime)
	assert.Equal(t, "14:29:00", corrected[1].CorrectedTime)
	assert.Equal(t, "14:30:00", corrected[2].CorrectedTime)
	for _, entry := range corrected {
		assert.Equal(t, "15/01/2024", entry.CorrectedDay)
		assert.True(t, entry.UseCorrectedDate)
	}
}

func TestCorrectDatesKeepsOriginalFields(t *testing.T) {
	entries := []Entry{{Day: "03/07", Time: "23:59:00"}}
	fileDate := time.Date(2024, time.February, 1, 0, 0, 30, 0, time.Local)

	corrected := CorrectDates(entries, &fileDate)

	require.Len(t, corrected, 1)
	assert.Equal(t, "03/07", corrected[0].OriginalDay)
	assert.Equal(t, "23:59:00", corrected[0].OriginalTime)
	// The raw device fields survive untouched.
	assert.Equal(t, "03/07", corrected[0].Day)
	assert.Equal(t, "23:59:00", corrected[0].Time)
}

func TestCorrectDatesCrossesMidnight(t *testing.T) {
	entries := make([]Entry, 31)
	fileDate := time.Date(2024, time.March, 2, 0, 15, 0, 0, time.Local)

	corrected := CorrectDates(entries, &fileDate)

	require.Len(t, corrected, 31)
	assert.Equal(t, "01/03/2024", corrected[0].CorrectedDay)
	assert.Equal(t, "23:45:00", corrected[0].CorrectedTime)
	assert.Equal(t, "02/03/2024", corrected[30].CorrectedDay)
	assert.Equal(t, "00:15:00", corrected[30].CorrectedTime)
}

func TestCorrectDatesEmptyHistory(t *testing.T) {
	fileDate := time.Date(2024, time.January, 15, 14, 30, 0, 0, time.Local)

	assert.Empty(t, CorrectDates(nil, &fileDate))
	assert.Empty(t, CorrectDates([]Entry{}, &fileDate))
}

func TestCorrectDatesNilFileDate(t *testing.T) {
	entries := []Entry{{Day: "01/01", Time: "10:00:00"}}

	result := CorrectDates(entries, nil)

	require.Len(t, result, 1)
	assert.False(t, result[0].UseCorrectedDate)
	assert.Empty(t, result[0].CorrectedDay)
}

func TestCorrectDatesDoesNotMutateInput(t *testing.T) {
	entries := []Entry{{Day: "01/01", Time: "10:00:00"}}
	fileDate := time.Date(2024, time.January, 15, 14, 30, 0, 0, time.Local)

	_ = CorrectDates(entries, &fileDate)

	assert.False(t, entries[0].UseCorrectedDate)
	assert.Empty(t, entries[0].CorrectedDay)
}

func TestTimestampLabel(t *testing.T) {
	raw := Entry{Day: "01/01", Time: "10:00:00"}
	assert.Equal(t, "01/01 10:00:00", raw.TimestampLabel())

	corrected := Entry{
		Day: "01/01", Time: "10:00:00",
		CorrectedDay: "15/01/2024", CorrectedTime: "14:30:00",
		UseCorrectedDate: true,
	}
	assert.Equal(t, "15/01/2024 14:30:00", corrected.TimestampLabel())
}
