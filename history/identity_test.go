package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBatteryID(t *testing.T) {
	assert.Equal(t, "ABC123", GenerateBatteryID("HABC123_history_20240115143000.txt"))
	assert.Equal(t, "PTL12345", GenerateBatteryID("KPTL12345_history_20231201080000.txt"))
	// Datetime suffix is not required for identity, only the serial.
	assert.Equal(t, "ABC123", GenerateBatteryID("HABC123_history.txt"))
}

func TestGenerateBatteryIDFallback(t *testing.T) {
	assert.Equal(t, "unknownforma", GenerateBatteryID("unknown-format-file.txt"))
	assert.Equal(t, "short", GenerateBatteryID("short"))
}

func TestGenerateBatteryIDStableAcrossCalls(t *testing.T) {
	a := GenerateBatteryID("HABC123_history_20240115143000.txt")
	b := GenerateBatteryID("HABC123_history_20240116090000.txt")
	assert.Equal(t, a, b)
}

func TestExtractFileDatetime(t *testing.T) {
	ts := ExtractFileDatetime("HABC123_history_20240115143000.txt")
	require.NotNil(t, ts)
	expected := time.Date(2024, time.January, 15, 14, 30, 0, 0, time.Local)
	assert.True(t, ts.Equal(expected))
}

func TestExtractFileDatetimeRejectsBadNames(t *testing.T) {
	assert.Nil(t, ExtractFileDatetime("HABC123_history.txt"))
	assert.Nil(t, ExtractFileDatetime("HABC123_history_2024.txt"))
	assert.Nil(t, ExtractFileDatetime("notes.txt"))
	// 14 digits that are not a real date.
	assert.Nil(t, ExtractFileDatetime("HABC123_history_20241399250000.txt"))
}

func TestGenerateDisplayName(t *testing.T) {
	doc := &Document{DeviceAddress: "3"}
	assert.Equal(t, "Battery 3", GenerateDisplayName(doc))

	doc = &Document{Info: map[string]string{"Device address": "7"}}
	assert.Equal(t, "Battery 7", GenerateDisplayName(doc))

	doc = &Document{BatteryID: "ABCDEFGHIJKL"}
	assert.Equal(t, "Battery ABCDEFGH", GenerateDisplayName(doc))
}
