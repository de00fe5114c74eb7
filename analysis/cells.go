package analysis

import "github.com/pylontech-tools/pylonhist/history"

// CellImbalance is the per-sample spread across the true per-cell
// voltages of one history entry. Voltages are in volts.
type CellImbalance struct {
	Voltages   []float64 `json:"voltages"`
	MinVoltage float64   `json:"minVoltage"`
	MaxVoltage float64   `json:"maxVoltage"`
	AvgVoltage float64   `json:"avgVoltage"`
	Imbalance  float64   `json:"imbalance"`
	CellCount  int       `json:"cellCount"`
	Timestamp  string    `json:"timestamp"`
}

// CalculateCellImbalance computes the cell voltage spread for one entry
// from its per-cell telemetry block. Returns nil when the entry carries
// no cell data.
func CalculateCellImbalance(entry *history.Entry) *CellImbalance {
	if entry.CellData == nil || len(entry.CellData.Voltages) == 0 {
		return nil
	}

	voltages := make([]float64, len(entry.CellData.Voltages))
	minV := float64(entry.CellData.Voltages[0]) / 1000
	maxV := minV
	var sum float64
	for i, mv := range entry.CellData.Voltages {
		v := float64(mv) / 1000
		voltages[i] = v
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	return &CellImbalance{
		Voltages:   voltages,
		MinVoltage: minV,
		MaxVoltage: maxV,
		AvgVoltage: sum / float64(len(voltages)),
		Imbalance:  maxV - minV,
		CellCount:  len(voltages),
		Timestamp:  entry.Day + " " + entry.Time,
	}
}
