package history

import (
	"regexp"
	"time"
)

var (
	serialRe   = regexp.MustCompile(`[HK]([A-Z0-9]+)_history`)
	datetimeRe = regexp.MustCompile(`(?i)[HK][A-Z0-9]+_history_(\d{14})\.txt$`)
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

const fallbackIDLength = 12

// GenerateBatteryID derives a stable battery identifier from a filename.
// Pylontech console exports are named [H|K]{serial}_history_{...}.txt and
// the serial is the identifier. Filenames that do not follow the
// convention fall back to the filename stripped of non-alphanumeric
// characters and truncated.
func GenerateBatteryID(filename string) string {
	if m := serialRe.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	id := nonAlnumRe.ReplaceAllString(filename, "")
	if len(id) > fallbackIDLength {
		id = id[:fallbackIDLength]
	}
	return id
}

// ExtractFileDatetime pulls the 14-digit YYYYMMDDHHMMSS creation time
// out of a conventionally named history file. Returns nil when the
// filename does not follow the convention.
func ExtractFileDatetime(filename string) *time.Time {
	m := datetimeRe.FindStringSubmatch(filename)
	if m == nil {
		return nil
	}
	t, err := time.ParseInLocation("20060102150405", m[1], time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// GenerateDisplayName builds the default human-readable label for a
// parsed document: the device address when the dump carries one, else a
// prefix of the battery identifier.
func GenerateDisplayName(doc *Document) string {
	if doc.DeviceAddress != "" {
		return "Battery " + doc.DeviceAddress
	}
	if addr, ok := doc.Info["Device address"]; ok && addr != "" {
		return "Battery " + addr
	}
	id := doc.BatteryID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Battery " + id
}
