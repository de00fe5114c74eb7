// Package history parses Pylontech battery "history" text dumps into
// structured telemetry documents.
//
// The dumps are produced by the battery console and are line oriented:
// an "info" section and a "stat" section of colon-delimited key/value
// pairs, followed by a "data history" section of whitespace-delimited
// records, one sample per line, optionally carrying per-cell telemetry.
package history

import "time"

// Field positions of a history record after splitting on whitespace.
// The device emits fixed-position fields; indices 14 and 15 are
// reserved and everything from 17 on is variable-length cell data.
const (
	fieldID             = 0
	fieldDay            = 1
	fieldTime           = 2
	fieldVoltage        = 3 // mV
	fieldCurrent        = 4 // mA
	fieldTemperature    = 5 // m°C
	fieldTempLow        = 6
	fieldTempHigh       = 7
	fieldVoltageLowest  = 8
	fieldVoltageHighest = 9
	fieldBaseState      = 10
	fieldVoltageState   = 11
	fieldCurrentState   = 12
	fieldTempState      = 13
	fieldSOC            = 16

	minRecordFields = 10

	// MaxCells is the number of cells in a Pylontech 48V pack.
	MaxCells = 15

	cellRecordFields = 6
)

// Entry is one sampled telemetry record from the history section.
// Electrical values are in fixed-point device units: divide by 1000
// for volts, amps and degrees Celsius.
type Entry struct {
	ID             string `json:"id"`
	Day            string `json:"day"`
	Time           string `json:"time"`
	Voltage        int    `json:"voltage"`
	Current        int    `json:"current"`
	Temperature    int    `json:"temperature"`
	TempLow        int    `json:"tempLow"`
	TempHigh       int    `json:"tempHigh"`
	VoltageLowest  int    `json:"voltageLowest"`
	VoltageHighest int    `json:"voltageHighest"`

	// Status tokens from the device vocabulary (Charge, Dischg, Idle, ...).
	// Treated as opaque tags, the device may emit values we have not seen.
	BaseState    string `json:"baseState"`
	VoltageState string `json:"voltageState"`
	CurrentState string `json:"currentState"`
	TempState    string `json:"tempState"`

	// SOC is a percentage as printed by the device, may be empty.
	SOC string `json:"soc"`

	CellData *CellData `json:"cellData,omitempty"`

	// Set by CorrectDates when the filename carries a creation time.
	CorrectedDay     string `json:"correctedDay,omitempty"`
	CorrectedTime    string `json:"correctedTime,omitempty"`
	OriginalDay      string `json:"originalDay,omitempty"`
	OriginalTime     string `json:"originalTime,omitempty"`
	UseCorrectedDate bool   `json:"useCorrectedDate,omitempty"`
}

// TimestampLabel returns the display timestamp for the entry, using the
// corrected date when one was reconstructed from the file creation time.
func (e *Entry) TimestampLabel() string {
	if e.UseCorrectedDate {
		return e.CorrectedDay + " " + e.CorrectedTime
	}
	return e.Day + " " + e.Time
}

// CellState holds the two opaque per-cell status tokens.
type CellState struct {
	State1 string `json:"state1"`
	State2 string `json:"state2"`
}

// CellData is the per-cell telemetry block of an entry. All four slices
// are parallel and always the same length: a malformed cell terminates
// extraction, so cells are only ever truncated from the end.
type CellData struct {
	Voltages     []int       `json:"voltages"`     // mV
	Temperatures []int       `json:"temperatures"` // m°C
	States       []CellState `json:"states"`
	Percentages  []string    `json:"percentages"`
}

// CellCount returns the number of cells extracted for this entry.
func (c *CellData) CellCount() int {
	return len(c.Voltages)
}

// Document is one parsed history dump, one physical battery unit.
type Document struct {
	Info  map[string]string `json:"info"`
	Stats map[string]string `json:"stats"`

	// History is kept in file order. The device emits newest samples
	// first; nothing here re-sorts it.
	History []Entry `json:"history"`

	Filename          string     `json:"filename,omitempty"`
	FileDate          *time.Time `json:"fileDate,omitempty"`
	HasCorrectedDates bool       `json:"hasCorrectedDates,omitempty"`
	DeviceAddress     string     `json:"deviceAddress,omitempty"`

	BatteryID   string    `json:"batteryId"`
	DisplayName string    `json:"displayName"`
	LoadedAt    time.Time `json:"loadedAt"`
}
