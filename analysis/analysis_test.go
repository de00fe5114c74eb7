package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/history"
)

func testBattery(id string, stats map[string]string, entries []history.Entry) Battery {
	if stats == nil {
		stats = map[string]string{}
	}
	return Battery{
		Doc: &history.Document{
			Info:        map[string]string{},
			Stats:       stats,
			History:     entries,
			BatteryID:   id,
			DisplayName: "Battery " + id,
		},
	}
}

func flatEntries(n, voltageMV int) []history.Entry {
	entries := make([]history.Entry, n)
	for i := range entries {
		entries[i] = history.Entry{
			ID: fmt.Sprint(i + 1), Day: "01/01", Time: "10:00:00",
			Voltage: voltageMV, Temperature: 25000,
		}
	}
	return entries
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 95, leadingInt("95%", 0))
	assert.Equal(t, 1500, leadingInt(" 1500 ", 0))
	assert.Equal(t, -5, leadingInt("-5x", 0))
	assert.Equal(t, 42, leadingInt("abc", 42))
	assert.Equal(t, 42, leadingInt("", 42))
}

func TestAnalyzeEmptyCollection(t *testing.T) {
	assert.Nil(t, Analyze(nil))
	assert.Nil(t, Analyze([]Battery{}))
}

func TestAnalyzeProducesEveryReport(t *testing.T) {
	batteries := []Battery{
		testBattery("A", map[string]string{"SOH": "95%", "Charge Cnt.": "500"}, flatEntries(20, 51000)),
		testBattery("B", map[string]string{"SOH": "82%", "Charge Cnt.": "4500"}, flatEntries(20, 49000)),
	}

	result := Analyze(batteries)

	require.NotNil(t, result)
	assert.Len(t, result.BatteryHealth, 2)
	assert.Len(t, result.DegradationAnalysis, 2)
	assert.Len(t, result.CellBalance, 2)
	assert.Len(t, result.PerformanceComparison, 2)
	assert.Len(t, result.RiskAssessment, 2)
}

func TestAnalyzeHealthDirectSOH(t *testing.T) {
	batteries := []Battery{
		testBattery("A", map[string]string{"SOH": "95%", "Charge Cnt.": "500"}, nil),
	}

	reports := AnalyzeHealth(batteries)

	require.Len(t, reports, 1)
	h := reports[0]
	assert.Equal(t, 95, h.SOH)
	assert.Equal(t, SOHDirect, h.SOHSource)
	assert.Equal(t, 500, h.Cycles)
	assert.Equal(t, StatusExcellent, h.HealthStatus)
	assert.InDelta(t, 95, h.HealthScore, 0.001)
	assert.InDelta(t, float64(7500)/365, h.EstimatedLifeYears, 0.001)
}

func TestAnalyzeHealthEstimatesFromCycles(t *testing.T) {
	batteries := []Battery{
		testBattery("A", map[string]string{"Pwr Percent": "0%", "Charge Cnt.": "1500"}, nil),
	}

	reports := AnalyzeHealth(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, 90, reports[0].SOH)
	assert.Equal(t, SOHEstimated, reports[0].SOHSource)
}

func TestAnalyzeHealthEstimatesFromPowerPercent(t *testing.T) {
	batteries := []Battery{
		testBattery("A", map[string]string{"Pwr Percent": "85%"}, nil),
	}

	reports := AnalyzeHealth(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, 75, reports[0].SOH)
	assert.Equal(t, SOHEstimated, reports[0].SOHSource)
}

func TestAnalyzeHealthEstimatesFromVoltage(t *testing.T) {
	batteries := []Battery{
		testBattery("A", map[string]string{"Pwr Percent": "0%"}, flatEntries(20, 51500)),
	}

	reports := AnalyzeHealth(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, 95, reports[0].SOH)
	assert.Equal(t, SOHEstimated, reports[0].SOHSource)
}

func TestAnalyzeHealthPenalties(t *testing.T) {
	battery := testBattery("A", map[string]string{"SOH": "80%", "Charge Cnt.": "7000"}, nil)
	battery.Alerts = []alerts.Alert{
		{Severity: alerts.Critical}, {Severity: alerts.Critical},
	}

	reports := AnalyzeHealth([]Battery{battery})

	require.Len(t, reports, 1)
	h := reports[0]
	assert.Equal(t, StatusGood, h.HealthStatus)
	// 80 - 2 (cycle band) - 6 (two critical alerts), inside the clamp.
	assert.InDelta(t, 72, h.HealthScore, 0.001)
}

func TestHealthStatusBands(t *testing.T) {
	assert.Equal(t, StatusCritical, healthStatus(69))
	assert.Equal(t, StatusDegraded, healthStatus(70))
	assert.Equal(t, StatusGood, healthStatus(80))
	assert.Equal(t, StatusVeryGood, healthStatus(90))
	assert.Equal(t, StatusExcellent, healthStatus(95))
}

func TestAnalyzeDegradationInsufficientData(t *testing.T) {
	batteries := []Battery{testBattery("A", nil, flatEntries(5, 50000))}

	reports := AnalyzeDegradation(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, TrendInsufficientData, reports[0].Trend)
}

func TestAnalyzeDegradationRapid(t *testing.T) {
	// Newest samples first: recent head at 48V, older tail at 50V.
	entries := append(flatEntries(50, 48000), flatEntries(50, 50000)...)
	batteries := []Battery{testBattery("A", nil, entries)}

	reports := AnalyzeDegradation(batteries)

	require.Len(t, reports, 1)
	d := reports[0]
	assert.Equal(t, TrendRapid, d.Trend)
	assert.InDelta(t, 4, d.DegradationRate, 0.001)
	assert.InDelta(t, 48, d.RecentAvgVoltage, 0.001)
	assert.InDelta(t, 50, d.OlderAvgVoltage, 0.001)
}

func TestAnalyzeDegradationStable(t *testing.T) {
	batteries := []Battery{testBattery("A", nil, flatEntries(100, 50000))}

	reports := AnalyzeDegradation(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, TrendStable, reports[0].Trend)
	assert.InDelta(t, 0, reports[0].DegradationRate, 0.001)
}

func TestAnalyzeDegradationImprovement(t *testing.T) {
	entries := append(flatEntries(50, 52000), flatEntries(50, 50000)...)
	batteries := []Battery{testBattery("A", nil, entries)}

	reports := AnalyzeDegradation(batteries)

	require.Len(t, reports, 1)
	assert.Equal(t, TrendImprovement, reports[0].Trend)
	assert.InDelta(t, 4, reports[0].DegradationRate, 0.001)
}

func spreadEntries(spreads ...int) []history.Entry {
	entries := make([]history.Entry, len(spreads))
	for i, spread := range spreads {
		entries[i] = history.Entry{
			VoltageLowest:  3300,
			VoltageHighest: 3300 + spread,
		}
	}
	return entries
}

func TestAnalyzeCellBalance(t *testing.T) {
	batteries := []Battery{
		testBattery("good", nil, spreadEntries(10, 15)),
		testBattery("slight", nil, spreadEntries(30, 10)),
		testBattery("moderate", nil, spreadEntries(60, 20)),
		testBattery("critical", nil, spreadEntries(120, 50)),
		testBattery("empty", nil, nil),
	}

	reports := AnalyzeCellBalance(batteries)

	require.Len(t, reports, 5)
	assert.Equal(t, BalanceGood, reports[0].BalanceStatus)
	assert.Equal(t, BalanceSlight, reports[1].BalanceStatus)
	assert.Equal(t, BalanceModerate, reports[2].BalanceStatus)
	assert.Equal(t, BalanceCritical, reports[3].BalanceStatus)
	assert.Equal(t, BalanceInsufficientData, reports[4].BalanceStatus)

	assert.InDelta(t, 30, reports[1].MaxSpreadMV, 0.001)
	assert.InDelta(t, 20, reports[1].AvgSpreadMV, 0.001)
}

func TestComparePerformanceNeedsTwoBatteries(t *testing.T) {
	batteries := []Battery{testBattery("A", nil, nil)}
	assert.Empty(t, ComparePerformance(batteries))
}

func TestComparePerformanceRanks(t *testing.T) {
	batteries := []Battery{
		testBattery("weak", map[string]string{"SOH": "75%", "Charge Cnt.": "6000"}, flatEntries(10, 48000)),
		testBattery("strong", map[string]string{"SOH": "98%", "Charge Cnt.": "300"}, flatEntries(10, 52000)),
	}

	reports := ComparePerformance(batteries)

	require.Len(t, reports, 2)
	assert.Equal(t, "strong", reports[0].BatteryID)
	assert.Equal(t, 1, reports[0].Rank)
	assert.Equal(t, PerformanceBest, reports[0].Relative)
	assert.Equal(t, "weak", reports[1].BatteryID)
	assert.Equal(t, 2, reports[1].Rank)
	assert.Equal(t, PerformanceBelowAverage, reports[1].Relative)
	assert.Greater(t, reports[0].Score, reports[1].Score)
}

func TestComparePerformanceScoresNonIncreasing(t *testing.T) {
	batteries := []Battery{
		testBattery("a", map[string]string{"SOH": "90%", "Charge Cnt.": "2000"}, flatEntries(10, 50000)),
		testBattery("b", map[string]string{"SOH": "85%", "Charge Cnt.": "3000"}, flatEntries(10, 49500)),
		testBattery("c", map[string]string{"SOH": "97%", "Charge Cnt.": "400"}, flatEntries(10, 51800)),
	}

	reports := ComparePerformance(batteries)

	require.Len(t, reports, 3)
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i-1].Score, reports[i].Score)
		assert.Equal(t, i+1, reports[i].Rank)
	}
}

func TestAssessRiskBands(t *testing.T) {
	battery := testBattery("A", map[string]string{"SOH": "65%", "Charge Cnt.": "6500"}, nil)
	battery.Alerts = []alerts.Alert{
		{Severity: alerts.Critical}, {Severity: alerts.Critical},
	}

	reports := AssessRisk([]Battery{battery})

	require.Len(t, reports, 1)
	r := reports[0]
	// 40 (SOH) + 30 (cycles) + 40 (critical alerts), clamped to 100.
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, RiskCritical, r.Level)
	assert.Len(t, r.Factors, 3)
}

func TestAssessRiskExcellentCap(t *testing.T) {
	battery := testBattery("A", map[string]string{"SOH": "96%", "Charge Cnt.": "500"}, nil)
	for i := 0; i < 12; i++ {
		battery.Alerts = append(battery.Alerts, alerts.Alert{Severity: alerts.Warning})
	}

	reports := AssessRisk([]Battery{battery})

	require.Len(t, reports, 1)
	assert.Equal(t, 10, reports[0].Score)
	assert.Equal(t, RiskLow, reports[0].Level)
}

func TestAssessRiskMissingStatsAreBenign(t *testing.T) {
	reports := AssessRisk([]Battery{testBattery("A", nil, nil)})

	require.Len(t, reports, 1)
	assert.Equal(t, 0, reports[0].Score)
	assert.Equal(t, RiskLow, reports[0].Level)
	assert.Empty(t, reports[0].Factors)
}

func TestRecommend(t *testing.T) {
	worn := testBattery("worn", map[string]string{"SOH": "75%", "Charge Cnt.": "5500"}, nil)
	worn.Alerts = []alerts.Alert{{Severity: alerts.Critical}}
	healthy := testBattery("healthy", map[string]string{"SOH": "92%"}, nil)

	recs := Recommend([]Battery{worn, healthy})

	require.NotEmpty(t, recs)
	// Sorted by ascending priority.
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i-1].Priority, recs[i].Priority)
	}

	var messages []string
	for _, rec := range recs {
		messages = append(messages, rec.Message)
	}
	assert.Contains(t, messages, "Urgent replacement recommended - critical SOH")
	assert.Contains(t, messages, "Plan replacement - high cycle count")
	assert.Contains(t, messages, "Immediate intervention required - critical alerts")
	// Fleet average (75+92)/2 < 85.
	assert.Contains(t, messages, "Fleet-wide battery aging")
}

func TestRecommendNothingForHealthyFleet(t *testing.T) {
	batteries := []Battery{
		testBattery("a", map[string]string{"SOH": "96%", "Charge Cnt.": "500"}, nil),
		testBattery("b", map[string]string{"SOH": "94%", "Charge Cnt.": "800"}, nil),
	}
	assert.Empty(t, Recommend(batteries))
}

func TestCalculateCellImbalance(t *testing.T) {
	e := history.Entry{
		Day: "01/01", Time: "10:00:00",
		CellData: &history.CellData{Voltages: []int{3350, 3348, 3351}},
	}

	imbalance := CalculateCellImbalance(&e)

	require.NotNil(t, imbalance)
	assert.Equal(t, 3, imbalance.CellCount)
	assert.InDelta(t, 3.348, imbalance.MinVoltage, 0.0001)
	assert.InDelta(t, 3.351, imbalance.MaxVoltage, 0.0001)
	assert.InDelta(t, 0.003, imbalance.Imbalance, 0.0001)
	assert.Equal(t, "01/01 10:00:00", imbalance.Timestamp)
}

func TestCalculateCellImbalanceNoCellData(t *testing.T) {
	e := history.Entry{}
	assert.Nil(t, CalculateCellImbalance(&e))
}
