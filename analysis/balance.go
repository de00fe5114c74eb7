package analysis

// Balance statuses.
const (
	BalanceInsufficientData = "insufficient data"
	BalanceGood             = "well balanced"
	BalanceSlight           = "slight imbalance"
	BalanceModerate         = "moderate imbalance"
	BalanceCritical         = "critical imbalance"
)

// balanceWindow is how many of the most recent entries feed the
// pack-level spread.
const balanceWindow = 10

// CellBalanceReport is the pack-level imbalance analysis. It uses the
// highest/lowest pack voltage spread the device reports per sample, not
// the per-cell telemetry block; spreads are in mV.
type CellBalanceReport struct {
	BatteryID     string  `json:"batteryId"`
	DisplayName   string  `json:"displayName"`
	BalanceStatus string  `json:"balanceStatus"`
	MaxSpreadMV   float64 `json:"imbalance"`
	AvgSpreadMV   float64 `json:"avgImbalance"`
}

// AnalyzeCellBalance computes the average and worst voltage spread over
// the most recent samples of each battery.
func AnalyzeCellBalance(batteries []Battery) []CellBalanceReport {
	reports := make([]CellBalanceReport, 0, len(batteries))
	for _, battery := range batteries {
		doc := battery.Doc
		if len(doc.History) == 0 {
			reports = append(reports, CellBalanceReport{
				BatteryID:     doc.BatteryID,
				DisplayName:   doc.DisplayName,
				BalanceStatus: BalanceInsufficientData,
			})
			continue
		}

		recent := doc.History[:min(balanceWindow, len(doc.History))]
		var sum, maxSpread float64
		for _, entry := range recent {
			spread := float64(entry.VoltageHighest-entry.VoltageLowest) / 1000
			sum += spread
			if spread > maxSpread {
				maxSpread = spread
			}
		}
		avgSpread := sum / float64(len(recent))

		status := BalanceGood
		switch {
		case maxSpread > 0.1:
			status = BalanceCritical
		case maxSpread > 0.05:
			status = BalanceModerate
		case maxSpread > 0.02:
			status = BalanceSlight
		}

		reports = append(reports, CellBalanceReport{
			BatteryID:     doc.BatteryID,
			DisplayName:   doc.DisplayName,
			BalanceStatus: status,
			MaxSpreadMV:   maxSpread * 1000,
			AvgSpreadMV:   avgSpread * 1000,
		})
	}
	return reports
}
