package analysis

import "fmt"

// Risk levels.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// RiskReport scores the failure risk of one battery.
type RiskReport struct {
	BatteryID   string   `json:"batteryId"`
	DisplayName string   `json:"displayName"`
	Score       int      `json:"riskScore"`
	Level       string   `json:"riskLevel"`
	Factors     []string `json:"riskFactors"`
}

// AssessRisk scores each battery from independent additive risk bands:
// SOH, cycle count, and alert volume. A battery that looks excellent on
// every primary indicator (SOH >= 95, under 1000 cycles, no critical
// alerts) has its score capped at 10 to avoid false positives from
// accumulated warnings. The final score is clamped to [0, 100].
func AssessRisk(batteries []Battery) []RiskReport {
	reports := make([]RiskReport, 0, len(batteries))
	for _, battery := range batteries {
		doc := battery.Doc
		soh := statInt(doc, "SOH", 100)
		cycles := statInt(doc, "Charge Cnt.", 0)
		critical := criticalCount(battery.Alerts)
		warning := warningCount(battery.Alerts)

		score := 0
		var factors []string

		switch {
		case soh < 70:
			score += 40
			factors = append(factors, "critical SOH (< 70%)")
		case soh < 80:
			score += 25
			factors = append(factors, "degraded SOH (< 80%)")
		case soh < 90:
			score += 10
			factors = append(factors, "slightly degraded SOH (< 90%)")
		}

		switch {
		case cycles > 6000:
			score += 30
			factors = append(factors, "very high cycle count (> 6000)")
		case cycles > 4000:
			score += 15
			factors = append(factors, "high cycle count (> 4000)")
		case cycles > 2000:
			score += 5
			factors = append(factors, "moderate cycle count (> 2000)")
		}

		if critical > 0 {
			score += critical * 20
			factors = append(factors, fmt.Sprintf("%d critical alert(s)", critical))
		}

		switch {
		case warning > 10:
			score += 15
			factors = append(factors, fmt.Sprintf("many warning alerts (%d)", warning))
		case warning > 5:
			score += 8
			factors = append(factors, fmt.Sprintf("several warning alerts (%d)", warning))
		}

		// An excellent battery never scores high on warnings alone.
		if soh >= 95 && cycles < 1000 && critical == 0 && score > 10 {
			score = 10
		}
		if score > 100 {
			score = 100
		}

		level := RiskLow
		switch {
		case score > 70:
			level = RiskCritical
		case score > 40:
			level = RiskHigh
		case score > 20:
			level = RiskModerate
		}

		reports = append(reports, RiskReport{
			BatteryID:   doc.BatteryID,
			DisplayName: doc.DisplayName,
			Score:       score,
			Level:       level,
			Factors:     factors,
		})
	}
	return reports
}
