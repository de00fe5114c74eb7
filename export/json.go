package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

// fleetFileVersion is the schema version of the fleet export format.
// Must stay in step with what the store's import accepts.
const fleetFileVersion = "1.0"

// enrichedEntry is a history entry with derived physical-unit fields
// added for consumers that do not know the device's fixed-point units.
type enrichedEntry struct {
	history.Entry
	TemperatureC float64 `json:"temperatureC"`
	VoltageV     float64 `json:"voltageV"`
	CurrentA     float64 `json:"currentA"`
}

// batteryExport is the single-battery JSON export document.
type batteryExport struct {
	ExportDate time.Time         `json:"exportDate"`
	SystemInfo map[string]string `json:"systemInfo"`
	Statistics map[string]string `json:"statistics"`
	Alerts     []alerts.Alert    `json:"alerts"`
	History    []enrichedEntry   `json:"history"`
	Thresholds alerts.Thresholds `json:"thresholds"`
}

// WriteJSON renders one battery, its alerts and the active thresholds
// as an indented JSON document.
func WriteJSON(w io.Writer, doc *history.Document, alertList []alerts.Alert, thresholds alerts.Thresholds) error {
	out := batteryExport{
		ExportDate: time.Now(),
		SystemInfo: doc.Info,
		Statistics: doc.Stats,
		Alerts:     alertList,
		History:    make([]enrichedEntry, 0, len(doc.History)),
		Thresholds: thresholds,
	}
	for _, entry := range doc.History {
		out.History = append(out.History, enrichedEntry{
			Entry:        entry,
			TemperatureC: float64(entry.Temperature) / 1000,
			VoltageV:     float64(entry.Voltage) / 1000,
			CurrentA:     float64(entry.Current) / 1000,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// fleetExport wraps every loaded battery for transfer. The shape is the
// one the store's import reads back: version, appVersion,
// batteriesCount and full documents under "batteries".
type fleetExport struct {
	ExportDate     time.Time          `json:"exportDate"`
	Version        string             `json:"version"`
	AppVersion     string             `json:"appVersion"`
	BatteriesCount int                `json:"batteriesCount"`
	Thresholds     alerts.Thresholds  `json:"thresholds"`
	Batteries      []fleetExportEntry `json:"batteries"`
}

type fleetExportEntry struct {
	history.Document
	ExportedAt time.Time `json:"exportedAt"`
}

// WriteFleetJSON renders the whole loaded collection as a fleet
// transfer document.
func WriteFleetJSON(w io.Writer, docs []*history.Document, thresholds alerts.Thresholds, appVersion string) error {
	now := time.Now()
	out := fleetExport{
		ExportDate:     now,
		Version:        fleetFileVersion,
		AppVersion:     appVersion,
		BatteriesCount: len(docs),
		Thresholds:     thresholds,
		Batteries:      make([]fleetExportEntry, 0, len(docs)),
	}
	for _, doc := range docs {
		out.Batteries = append(out.Batteries, fleetExportEntry{Document: *doc, ExportedAt: now})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
