// Package analysis computes health, degradation, balance, risk and
// comparative performance analytics over a collection of loaded
// batteries. All functions are pure: they never mutate their input and
// results are recomputed on demand.
package analysis

import (
	"strconv"
	"strings"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

// cycleLimit is the nominal cycle life of a Pylontech pack.
const cycleLimit = 8000

// Battery is one loaded battery as seen by the analysis layer: the
// parsed document plus its generated alerts.
type Battery struct {
	Doc    *history.Document
	Alerts []alerts.Alert
}

// Result aggregates every analysis over the loaded collection. Health,
// degradation, balance and risk carry one report per battery;
// performance comparison and recommendations are collection-wide.
type Result struct {
	BatteryHealth         []HealthReport      `json:"batteryHealth"`
	DegradationAnalysis   []DegradationReport `json:"degradationAnalysis"`
	CellBalance           []CellBalanceReport `json:"cellBalance"`
	PerformanceComparison []PerformanceReport `json:"performanceComparison"`
	RiskAssessment        []RiskReport        `json:"riskAssessment"`
	Recommendations       []Recommendation    `json:"recommendations"`
}

// Analyze runs the full analysis over the loaded collection. Returns
// nil when nothing is loaded.
func Analyze(batteries []Battery) *Result {
	if len(batteries) == 0 {
		return nil
	}
	return &Result{
		BatteryHealth:         AnalyzeHealth(batteries),
		DegradationAnalysis:   AnalyzeDegradation(batteries),
		CellBalance:           AnalyzeCellBalance(batteries),
		PerformanceComparison: ComparePerformance(batteries),
		RiskAssessment:        AssessRisk(batteries),
		Recommendations:       Recommend(batteries),
	}
}

// statInt reads a cumulative counter from the stats section, tolerating
// trailing units the device appends ("95%"). Missing or unparseable
// values yield the default.
func statInt(doc *history.Document, key string, def int) int {
	raw, ok := doc.Stats[key]
	if !ok {
		return def
	}
	return leadingInt(raw, def)
}

// leadingInt parses the leading integer of a string, ignoring whatever
// follows it. Returns the default when the string has no leading digits.
func leadingInt(s string, def int) int {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return def
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return def
	}
	return n
}

func criticalCount(in []alerts.Alert) int {
	critical, _ := alerts.Count(in)
	return critical
}

func warningCount(in []alerts.Alert) int {
	_, warning := alerts.Count(in)
	return warning
}
