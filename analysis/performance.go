package analysis

import (
	"math"
	"sort"

	"github.com/pylontech-tools/pylonhist/history"
)

// Relative performance labels.
const (
	PerformanceBest         = "best"
	PerformanceAboveAverage = "above average"
	PerformanceBelowAverage = "below average"
)

// PerformanceReport ranks one battery within the loaded collection.
type PerformanceReport struct {
	BatteryID   string  `json:"batteryId"`
	DisplayName string  `json:"displayName"`
	SOH         int     `json:"soh"`
	Cycles      int     `json:"cycles"`
	AvgVoltage  float64 `json:"avgVoltage"`
	AvgTemp     float64 `json:"avgTemp"`
	AlertCount  int     `json:"alerts"`
	Score       float64 `json:"performanceScore"`
	Rank        int     `json:"rank"`
	Relative    string  `json:"relativePerformance"`
}

// ComparePerformance scores and ranks the loaded batteries against each
// other. A comparison needs at least two batteries; otherwise the
// result is empty. The composite score weighs SOH, cycle wear, average
// voltage, alert count and how close the average temperature sits to
// the comfortable operating band.
func ComparePerformance(batteries []Battery) []PerformanceReport {
	if len(batteries) < 2 {
		return []PerformanceReport{}
	}

	reports := make([]PerformanceReport, 0, len(batteries))
	for _, battery := range batteries {
		doc := battery.Doc
		soh := statInt(doc, "SOH", 0)
		cycles := statInt(doc, "Charge Cnt.", 0)
		avgVoltage := avgVoltageV(doc.History)
		avgTemp := avgTemperatureC(doc.History)
		alertCount := len(battery.Alerts)

		tempScore := math.Max(0, 10-math.Abs(avgTemp-25))
		if avgTemp > 15 && avgTemp < 35 {
			tempScore = 10
		}

		score := float64(soh)*0.4 +
			float64(cycleLimit-cycles)/cycleLimit*30 +
			math.Min(avgVoltage/54*20, 20) +
			math.Max(20-float64(alertCount)*2, 0) +
			tempScore

		reports = append(reports, PerformanceReport{
			BatteryID:   doc.BatteryID,
			DisplayName: doc.DisplayName,
			SOH:         soh,
			Cycles:      cycles,
			AvgVoltage:  avgVoltage,
			AvgTemp:     avgTemp,
			AlertCount:  alertCount,
			Score:       score,
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Score > reports[j].Score
	})
	for i := range reports {
		reports[i].Rank = i + 1
		switch {
		case i == 0:
			reports[i].Relative = PerformanceBest
		case float64(i) < float64(len(reports))/2:
			reports[i].Relative = PerformanceAboveAverage
		default:
			reports[i].Relative = PerformanceBelowAverage
		}
	}
	return reports
}

func avgTemperatureC(entries []history.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range entries {
		sum += float64(entry.Temperature)
	}
	return sum / float64(len(entries)) / 1000
}
