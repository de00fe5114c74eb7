package history

import "strconv"

// cellDataSearchStart is the first field index that can hold cell data.
const cellDataSearchStart = 17

// parseCellData extracts per-cell telemetry from the variable-length
// tail of a history record. The cell block starts at the first cell's
// sequence number "1", which the device prints immediately after a
// "50000" capacity marker; when the marker is absent the first "1" with
// room for a full six-field cell record is used instead.
//
// Up to MaxCells records of {seq, mV, m°C, state1, state2, pct} are
// extracted. The sequence numbers must run 1..N with no gaps; the first
// cell whose sequence number, voltage or temperature does not check out
// terminates extraction, so the four slices stay parallel and cells are
// only ever truncated from the end.
func parseCellData(parts []string) *CellData {
	cells := &CellData{}

	start := -1
	for i := cellDataSearchStart; i < len(parts)-1; i++ {
		if parts[i] == "50000" && parts[i+1] == "1" {
			start = i + 1
			break
		}
	}
	if start == -1 {
		for i := cellDataSearchStart; i < len(parts); i++ {
			if parts[i] == "1" && i+5 < len(parts) {
				start = i
				break
			}
		}
	}
	if start == -1 {
		return cells
	}

	for cell := 0; cell < MaxCells; cell++ {
		base := start + cell*cellRecordFields
		if base+5 >= len(parts) {
			break
		}
		if seq, err := strconv.Atoi(parts[base]); err != nil || seq != cell+1 {
			break
		}
		voltage, err := strconv.Atoi(parts[base+1])
		if err != nil || voltage <= 0 {
			break
		}
		temperature, err := strconv.Atoi(parts[base+2])
		if err != nil {
			break
		}
		cells.Voltages = append(cells.Voltages, voltage)
		cells.Temperatures = append(cells.Temperatures, temperature)
		cells.States = append(cells.States, CellState{State1: parts[base+3], State2: parts[base+4]})
		cells.Percentages = append(cells.Percentages, parts[base+5])
	}

	return cells
}

// atoiOrZero parses an integer field, degrading to zero on failure.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
