package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pylontech-tools/pylonhist/history"
)

// fleetFileVersion is the schema version of the fleet transfer format.
const fleetFileVersion = "1.0"

// FleetFile is the JSON shape used to move whole collections between
// installations. Batteries are full documents with an export timestamp
// attached.
type FleetFile struct {
	ExportDate     time.Time        `json:"exportDate"`
	Version        string           `json:"version"`
	AppVersion     string           `json:"appVersion"`
	BatteriesCount int              `json:"batteriesCount"`
	Batteries      []FleetFileEntry `json:"batteries"`
}

// FleetFileEntry is one battery within a fleet file.
type FleetFileEntry struct {
	history.Document
	ExportedAt time.Time `json:"exportedAt"`
}

// ImportResult reports what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ExportJSON serializes the whole stored collection into the fleet
// transfer format.
func (s *Store) ExportJSON(appVersion string) ([]byte, error) {
	docs, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	file := FleetFile{
		ExportDate:     now,
		Version:        fleetFileVersion,
		AppVersion:     appVersion,
		BatteriesCount: len(docs),
		Batteries:      make([]FleetFileEntry, 0, len(docs)),
	}
	for _, doc := range docs {
		file.Batteries = append(file.Batteries, FleetFileEntry{Document: *doc, ExportedAt: now})
	}
	return json.MarshalIndent(file, "", "  ")
}

// ImportJSON loads batteries from a fleet file. The shape is validated
// up front and an invalid file rejects the whole import; nothing is
// partially written. Batteries whose id already exists locally are
// skipped, never merged or overwritten. Importing a file that adds no
// new battery is an error so the caller can surface it.
func (s *Store) ImportJSON(data []byte) (ImportResult, error) {
	var result ImportResult

	var file FleetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return result, fmt.Errorf("invalid fleet file: %w", err)
	}
	if file.Batteries == nil {
		return result, fmt.Errorf("invalid fleet file: missing batteries list")
	}

	existing, err := s.List()
	if err != nil {
		return result, err
	}
	known := make(map[string]bool, len(existing))
	for _, record := range existing {
		known[record.BatteryID] = true
	}

	var fresh []*history.Document
	for i := range file.Batteries {
		doc := file.Batteries[i].Document
		if doc.BatteryID == "" || known[doc.BatteryID] {
			result.Skipped++
			continue
		}
		known[doc.BatteryID] = true
		fresh = append(fresh, &doc)
	}
	if len(fresh) == 0 {
		return result, fmt.Errorf("no new batteries to import")
	}

	if err := s.SaveAll(fresh); err != nil {
		return result, err
	}
	result.Imported = len(fresh)
	return result, nil
}
