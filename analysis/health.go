package analysis

import (
	"math"

	"github.com/pylontech-tools/pylonhist/history"
)

// SOH sources.
const (
	SOHDirect    = "direct"
	SOHEstimated = "estimé"
)

// Health statuses, derived from SOH alone.
const (
	StatusExcellent = "Excellent"
	StatusVeryGood  = "Very Good"
	StatusGood      = "Good"
	StatusDegraded  = "Degraded"
	StatusCritical  = "Critical"
)

// HealthReport is the per-battery health analysis.
type HealthReport struct {
	BatteryID          string  `json:"batteryId"`
	DisplayName        string  `json:"displayName"`
	SOH                int     `json:"soh"`
	SOHSource          string  `json:"sohSource"`
	Cycles             int     `json:"cycles"`
	PowerPercent       int     `json:"powerPercent"`
	HealthStatus       string  `json:"healthStatus"`
	HealthScore        float64 `json:"healthScore"`
	EstimatedLifeYears float64 `json:"estimatedLifeRemaining"`
}

// AnalyzeHealth computes a health report per loaded battery.
//
// SOH comes from the device's own stat when present. When it is absent
// or zero it is estimated through an ordered fallback chain, each step
// attempted only if the previous produced no value: power percentage,
// cycle-count buckets, recent average voltage buckets, then a neutral
// default of 75.
func AnalyzeHealth(batteries []Battery) []HealthReport {
	reports := make([]HealthReport, 0, len(batteries))
	for _, battery := range batteries {
		doc := battery.Doc
		soh := statInt(doc, "SOH", 0)
		cycles := statInt(doc, "Charge Cnt.", 0)
		powerPercent := statInt(doc, "Pwr Percent", 100)

		_, hasSOH := doc.Stats["SOH"]
		if soh == 0 || !hasSOH {
			soh = estimateSOH(doc, cycles, powerPercent)
		}

		status := healthStatus(soh)
		score := float64(soh)

		// Cycle wear penalty, progressive bands scaled linearly so the
		// adjustment never reverses the SOH ordering.
		switch {
		case cycles > 6000:
			score -= math.Min(5, float64(cycles-6000)/1000*2)
		case cycles > 4000:
			score -= math.Min(3, float64(cycles-4000)/1000*1.5)
		case cycles > 2000:
			score -= math.Min(2, float64(cycles-2000)/1000)
		}

		if critical := criticalCount(battery.Alerts); critical > 0 {
			score -= math.Min(float64(critical)*3, 10)
		}

		// Keep the score within reach of the SOH it was derived from.
		minScore := math.Max(0, float64(soh)-10)
		maxScore := math.Min(100, float64(soh)+5)
		score = math.Max(minScore, math.Min(maxScore, score))

		source := SOHEstimated
		if hasSOH {
			source = SOHDirect
		}

		reports = append(reports, HealthReport{
			BatteryID:          doc.BatteryID,
			DisplayName:        doc.DisplayName,
			SOH:                soh,
			SOHSource:          source,
			Cycles:             cycles,
			PowerPercent:       powerPercent,
			HealthStatus:       status,
			HealthScore:        score,
			EstimatedLifeYears: math.Max(0, float64(cycleLimit-cycles)/365),
		})
	}
	return reports
}

// estimateSOH approximates SOH when the device did not report one.
func estimateSOH(doc *history.Document, cycles, powerPercent int) int {
	soh := 0

	if powerPercent > 0 {
		soh = int(math.Max(70, float64(powerPercent-10)))
	}

	if soh == 0 && cycles > 0 {
		switch {
		case cycles < 1000:
			soh = 95
		case cycles < 2000:
			soh = 90
		case cycles < 3000:
			soh = 85
		case cycles < 5000:
			soh = 80
		case cycles < 7000:
			soh = 75
		default:
			soh = 70
		}
	}

	if soh == 0 && len(doc.History) > 10 {
		recent := doc.History[:min(50, len(doc.History))]
		var sum float64
		for _, entry := range recent {
			sum += float64(entry.Voltage)
		}
		avgVoltage := sum / float64(len(recent)) / 1000
		switch {
		case avgVoltage > 51:
			soh = 95
		case avgVoltage > 50:
			soh = 88
		case avgVoltage > 49:
			soh = 82
		case avgVoltage > 48:
			soh = 75
		default:
			soh = 65
		}
	}

	if soh == 0 {
		soh = 75
	}
	return soh
}

func healthStatus(soh int) string {
	switch {
	case soh < 70:
		return StatusCritical
	case soh < 80:
		return StatusDegraded
	case soh < 90:
		return StatusGood
	case soh < 95:
		return StatusVeryGood
	default:
		return StatusExcellent
	}
}
