package history

import (
	"bufio"
	"strings"
	"time"
	"unicode"
)

// section is the parser state while scanning a dump. Section headers are
// matched by substring on the trimmed line, not by exact keyword: the
// console wraps the sections in prompt echoes and other boilerplate, and
// the substring match is deliberately tolerant of it.
type section int

const (
	sectionNone section = iota
	sectionInfo
	sectionStats
	sectionHistory
)

// sectionFor reports the section a header line switches to, or
// sectionNone if the line is not a header. Precedence matters: a line
// containing both "info" and "stat" counts as an info header.
func sectionFor(line string) section {
	switch {
	case strings.Contains(line, "info"):
		return sectionInfo
	case strings.Contains(line, "stat"):
		return sectionStats
	case strings.Contains(line, "data history"), strings.Contains(line, "datalist history"):
		return sectionHistory
	default:
		return sectionNone
	}
}

// Parse scans a raw history dump into a Document. It never fails on
// malformed input: unrecognized lines are skipped and a structurally
// empty file yields a document with empty sections. When filename is
// non-empty it is used to derive the battery identity and, if it carries
// a 14-digit creation time, to reconstruct absolute entry timestamps.
func Parse(content, filename string) *Document {
	doc := &Document{
		Info:     map[string]string{},
		Stats:    map[string]string{},
		History:  []Entry{},
		Filename: filename,
		LoadedAt: time.Now(),
	}
	if filename != "" {
		doc.FileDate = ExtractFileDatetime(filename)
		doc.BatteryID = GenerateBatteryID(filename)
	}

	current := sectionNone
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if s := sectionFor(line); s != sectionNone {
			current = s
			continue
		}

		switch current {
		case sectionInfo:
			if key, value, ok := splitKeyValue(line); ok {
				doc.Info[key] = value
				if strings.Contains(strings.ToLower(key), "device address") {
					doc.DeviceAddress = value
				}
			}
		case sectionStats:
			if key, value, ok := splitKeyValue(line); ok {
				doc.Stats[key] = value
			}
		case sectionHistory:
			if entry, ok := parseRecord(line); ok {
				doc.History = append(doc.History, entry)
			}
		}
	}

	if doc.FileDate != nil && len(doc.History) > 0 {
		doc.History = CorrectDates(doc.History, doc.FileDate)
		doc.HasCorrectedDates = true
	}
	doc.DisplayName = GenerateDisplayName(doc)

	return doc
}

// splitKeyValue splits a key:value line on the first colon. Both sides
// must be non-empty after trimming or the line is discarded.
func splitKeyValue(line string) (string, string, bool) {
	if !strings.Contains(line, ":") {
		return "", "", false
	}
	key, value, _ := strings.Cut(line, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// isRecordLine reports whether a trimmed line qualifies as a history
// record: one or more leading digits followed by whitespace.
func isRecordLine(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	return unicode.IsSpace(rune(line[i]))
}

// parseRecord converts one history line into an Entry. Records with
// fewer than 10 fields are dropped silently; numeric fields that fail to
// parse degrade to zero rather than rejecting the record.
func parseRecord(line string) (Entry, bool) {
	if !isRecordLine(line) {
		return Entry{}, false
	}
	parts := strings.Fields(line)
	if len(parts) < minRecordFields {
		return Entry{}, false
	}

	entry := Entry{
		ID:             parts[fieldID],
		Day:            parts[fieldDay],
		Time:           parts[fieldTime],
		Voltage:        atoiOrZero(parts[fieldVoltage]),
		Current:        atoiOrZero(parts[fieldCurrent]),
		Temperature:    atoiOrZero(parts[fieldTemperature]),
		TempLow:        atoiOrZero(parts[fieldTempLow]),
		TempHigh:       atoiOrZero(parts[fieldTempHigh]),
		VoltageLowest:  atoiOrZero(parts[fieldVoltageLowest]),
		VoltageHighest: atoiOrZero(parts[fieldVoltageHighest]),
	}
	entry.BaseState = fieldAt(parts, fieldBaseState)
	entry.VoltageState = fieldAt(parts, fieldVoltageState)
	entry.CurrentState = fieldAt(parts, fieldCurrentState)
	entry.TempState = fieldAt(parts, fieldTempState)
	entry.SOC = fieldAt(parts, fieldSOC)

	if len(parts) > fieldSOC+1 {
		if cells := parseCellData(parts); cells.CellCount() > 0 {
			entry.CellData = cells
		}
	}

	return entry, true
}

func fieldAt(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
