// Package fleet holds the in-memory collection of loaded batteries and
// coordinates the operations that span it: loading files, selection,
// renaming, and the process-wide threshold configuration with its
// whole-collection alert regeneration.
package fleet

import (
	"fmt"
	"sync"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/analysis"
	"github.com/pylontech-tools/pylonhist/history"
)

// Battery is one loaded battery: the parsed document plus its current
// alerts. Alerts are regenerated whenever the thresholds change.
type Battery struct {
	Doc    *history.Document
	Alerts []alerts.Alert
}

// File is one raw input submitted for loading.
type File struct {
	Name    string
	Content string
}

// Manager owns the loaded collection. All methods are safe for
// concurrent use; threshold updates and their alert regeneration are
// atomic with respect to every other accessor.
type Manager struct {
	mu         sync.Mutex
	thresholds alerts.Thresholds
	batteries  []*Battery
	selected   string
}

// NewManager returns an empty manager with the given thresholds.
func NewManager(thresholds alerts.Thresholds) *Manager {
	return &Manager{thresholds: thresholds}
}

// Load parses the submitted files independently and merges the results
// in submission order. A file whose derived battery id collides with an
// already loaded battery (or an earlier file in the same batch) is
// rejected with an error; the other files still load. When nothing was
// selected before, the first successfully loaded file in submission
// order becomes the selection — decided after all parses complete, so
// the outcome does not depend on parse completion order.
//
// Returns the battery ids loaded from this batch and one error per
// rejected file.
func (m *Manager) Load(files []File) ([]string, []error) {
	type outcome struct {
		doc *history.Document
	}
	parsed := make([]outcome, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file File) {
			defer wg.Done()
			parsed[i] = outcome{doc: history.Parse(file.Content, file.Name)}
		}(i, file)
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	var loaded []string
	var errs []error
	for i, p := range parsed {
		doc := p.doc
		if m.findLocked(doc.BatteryID) != nil {
			errs = append(errs, fmt.Errorf("battery %s is already loaded (file %s)", doc.BatteryID, files[i].Name))
			continue
		}
		battery := &Battery{
			Doc:    doc,
			Alerts: alerts.Generate(doc.History, m.thresholds),
		}
		m.batteries = append(m.batteries, battery)
		loaded = append(loaded, doc.BatteryID)
	}

	if m.selected == "" && len(loaded) > 0 {
		m.selected = loaded[0]
	}
	return loaded, errs
}

// Add inserts an already parsed document, applying the same duplicate
// policy as Load. Used when restoring batteries from the store.
func (m *Manager) Add(doc *history.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findLocked(doc.BatteryID) != nil {
		return fmt.Errorf("battery %s is already loaded", doc.BatteryID)
	}
	m.batteries = append(m.batteries, &Battery{
		Doc:    doc,
		Alerts: alerts.Generate(doc.History, m.thresholds),
	})
	if m.selected == "" {
		m.selected = doc.BatteryID
	}
	return nil
}

// Batteries returns the loaded collection in load order.
func (m *Manager) Batteries() []*Battery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Battery, len(m.batteries))
	copy(out, m.batteries)
	return out
}

// Get looks a battery up by id.
func (m *Manager) Get(id string) (*Battery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findLocked(id)
	return b, b != nil
}

// Selected returns the currently selected battery, or nil when the
// collection is empty.
func (m *Manager) Selected() *Battery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(m.selected)
}

// Select switches the selection to the given battery.
func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findLocked(id) == nil {
		return fmt.Errorf("no battery with id %s", id)
	}
	m.selected = id
	return nil
}

// Rename updates a battery's display name.
func (m *Manager) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findLocked(id)
	if b == nil {
		return fmt.Errorf("no battery with id %s", id)
	}
	b.Doc.DisplayName = name
	return nil
}

// Remove drops a battery from the collection. When the removed battery
// was selected, the selection falls back to the first remaining one.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.batteries {
		if b.Doc.BatteryID == id {
			m.batteries = append(m.batteries[:i], m.batteries[i+1:]...)
			if m.selected == id {
				m.selected = ""
				if len(m.batteries) > 0 {
					m.selected = m.batteries[0].Doc.BatteryID
				}
			}
			return nil
		}
	}
	return fmt.Errorf("no battery with id %s", id)
}

// Thresholds returns the current alerting configuration.
func (m *Manager) Thresholds() alerts.Thresholds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholds
}

// SetThresholds replaces the process-wide thresholds and regenerates
// the alerts of every loaded battery in one step. Callers never observe
// a collection where only some batteries reflect the new thresholds.
func (m *Manager) SetThresholds(thresholds alerts.Thresholds) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds = thresholds
	for _, b := range m.batteries {
		b.Alerts = alerts.Generate(b.Doc.History, thresholds)
	}
}

// Analyze runs the full analysis over the loaded collection.
func (m *Manager) Analyze() *analysis.Result {
	m.mu.Lock()
	input := make([]analysis.Battery, len(m.batteries))
	for i, b := range m.batteries {
		input[i] = analysis.Battery{Doc: b.Doc, Alerts: b.Alerts}
	}
	m.mu.Unlock()
	return analysis.Analyze(input)
}

func (m *Manager) findLocked(id string) *Battery {
	if id == "" {
		return nil
	}
	for _, b := range m.batteries {
		if b.Doc.BatteryID == id {
			return b
		}
	}
	return nil
}
