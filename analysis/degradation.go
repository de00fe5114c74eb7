package analysis

import (
	"math"

	"github.com/pylontech-tools/pylonhist/history"
)

// Degradation trends.
const (
	TrendInsufficientData = "insufficient data"
	TrendStable           = "stable"
	TrendModerate         = "moderate degradation"
	TrendRapid            = "rapid degradation"
	TrendImprovement      = "improvement"
)

// minDegradationEntries is the minimum history length for a trend.
const minDegradationEntries = 10

// DegradationReport compares recent samples against the oldest ones.
// Rates are absolute percent changes; Trend carries the direction.
type DegradationReport struct {
	BatteryID        string  `json:"batteryId"`
	DisplayName      string  `json:"displayName"`
	DegradationRate  float64 `json:"degradationRate"`
	SOCDegradation   float64 `json:"socDegradation"`
	Trend            string  `json:"trend"`
	RecentAvgVoltage float64 `json:"recentAvgVoltage"`
	OlderAvgVoltage  float64 `json:"olderAvgVoltage"`
}

// AnalyzeDegradation computes the voltage and SOC trend per battery by
// comparing the most recent <=50 entries against the least recent <=50.
// The device emits newest samples first, so "recent" is the head of the
// stored history and "older" the tail.
func AnalyzeDegradation(batteries []Battery) []DegradationReport {
	reports := make([]DegradationReport, 0, len(batteries))
	for _, battery := range batteries {
		doc := battery.Doc
		if len(doc.History) < minDegradationEntries {
			reports = append(reports, DegradationReport{
				BatteryID:   doc.BatteryID,
				DisplayName: doc.DisplayName,
				Trend:       TrendInsufficientData,
			})
			continue
		}

		window := min(50, len(doc.History))
		recent := doc.History[:window]
		older := doc.History[len(doc.History)-window:]

		recentAvgVoltage := avgVoltageV(recent)
		olderAvgVoltage := avgVoltageV(older)
		recentAvgSOC := avgSOC(recent)
		olderAvgSOC := avgSOC(older)

		voltageChange := percentDecline(olderAvgVoltage, recentAvgVoltage)
		socChange := percentDecline(olderAvgSOC, recentAvgSOC)

		trend := TrendStable
		switch {
		case voltageChange > 2 || socChange > 5:
			trend = TrendRapid
		case voltageChange > 1 || socChange > 2:
			trend = TrendModerate
		case voltageChange < -1:
			trend = TrendImprovement
		}

		reports = append(reports, DegradationReport{
			BatteryID:        doc.BatteryID,
			DisplayName:      doc.DisplayName,
			DegradationRate:  math.Abs(voltageChange),
			SOCDegradation:   math.Abs(socChange),
			Trend:            trend,
			RecentAvgVoltage: recentAvgVoltage,
			OlderAvgVoltage:  olderAvgVoltage,
		})
	}
	return reports
}

// percentDecline is the percent drop from older to recent, positive
// meaning decline. A zero baseline yields zero rather than dividing.
func percentDecline(older, recent float64) float64 {
	if older == 0 {
		return 0
	}
	return (older - recent) / older * 100
}

func avgVoltageV(entries []history.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range entries {
		sum += float64(entry.Voltage)
	}
	return sum / float64(len(entries)) / 1000
}

func avgSOC(entries []history.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range entries {
		sum += float64(leadingInt(entry.SOC, 0))
	}
	return sum / float64(len(entries))
}
