// Package alerts scans battery history against configurable thresholds
// and classifies threshold crossings by severity.
package alerts

import (
	"fmt"

	"github.com/pylontech-tools/pylonhist/history"
)

// Severity of an alert.
type Severity string

const (
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Thresholds is the process-wide alerting configuration, applied
// uniformly to every loaded battery. Temperatures are in °C, voltages
// in V.
type Thresholds struct {
	TempWarning         float64 `json:"tempWarning"`
	TempCritical        float64 `json:"tempCritical"`
	VoltageHigh         float64 `json:"voltageHigh"`
	VoltageLow          float64 `json:"voltageLow"`
	VoltageHighCritical float64 `json:"voltageHighCritical"`
	VoltageLowCritical  float64 `json:"voltageLowCritical"`
}

// DefaultThresholds returns the stock limits for Pylontech 48V packs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempWarning:         40,
		TempCritical:        45,
		VoltageHigh:         53.2,
		VoltageLow:          48.0,
		VoltageHighCritical: 54.5,
		VoltageLowCritical:  46.0,
	}
}

// Kind identifies which check raised an alert.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindVoltage     Kind = "voltage"
)

// Alert is one threshold crossing. Entry points at the originating
// history entry and is never copied.
type Alert struct {
	Severity  Severity       `json:"type"`
	Kind      Kind           `json:"kind"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Entry     *history.Entry `json:"-"`
}

// Generate scans the history in order and emits alerts for every
// threshold crossing. The checks are independent: one entry can raise
// both a temperature and a voltage alert. All comparisons are strict, a
// value exactly at a threshold does not alert.
func Generate(entries []history.Entry, thresholds Thresholds) []Alert {
	var result []Alert

	for i := range entries {
		entry := &entries[i]
		tempC := float64(entry.Temperature) / 1000
		voltageV := float64(entry.Voltage) / 1000

		if tempC > thresholds.TempWarning {
			severity := Warning
			if tempC > thresholds.TempCritical {
				severity = Critical
			}
			result = append(result, Alert{
				Severity:  severity,
				Kind:      KindTemperature,
				Message:   fmt.Sprintf("High temperature: %.1f°C", tempC),
				Timestamp: entry.TimestampLabel(),
				Entry:     entry,
			})
		}

		if voltageV > thresholds.VoltageHigh || voltageV < thresholds.VoltageLow {
			severity := Warning
			if voltageV > thresholds.VoltageHighCritical || voltageV < thresholds.VoltageLowCritical {
				severity = Critical
			}
			direction := "high"
			if voltageV < thresholds.VoltageLow {
				direction = "low"
			}
			result = append(result, Alert{
				Severity:  severity,
				Kind:      KindVoltage,
				Message:   fmt.Sprintf("Voltage %s: %.2fV", direction, voltageV),
				Timestamp: entry.TimestampLabel(),
				Entry:     entry,
			})
		}
	}

	return result
}

// Filters selects which alerts to show or export.
type Filters struct {
	Temperature  bool
	Voltage      bool
	CriticalOnly bool
}

// Filter returns the alerts that pass the given filters, preserving
// order.
func Filter(in []Alert, filters Filters) []Alert {
	var out []Alert
	for _, a := range in {
		if filters.CriticalOnly && a.Severity != Critical {
			continue
		}
		if !filters.Temperature && a.Kind == KindTemperature {
			continue
		}
		if !filters.Voltage && a.Kind == KindVoltage {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Count tallies alerts by severity.
func Count(in []Alert) (critical, warning int) {
	for _, a := range in {
		switch a.Severity {
		case Critical:
			critical++
		case Warning:
			warning++
		}
	}
	return critical, warning
}
