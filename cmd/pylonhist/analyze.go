package main

import (
	"fmt"

	"github.com/pylontech-tools/pylonhist/alerts"
	"github.com/pylontech-tools/pylonhist/analysis"
	"github.com/pylontech-tools/pylonhist/fleet"
)

func printBatterySummary(battery *fleet.Battery) {
	doc := battery.Doc
	critical, warning := alerts.Count(battery.Alerts)
	fmt.Printf("%s (%s)\n", doc.DisplayName, doc.BatteryID)
	fmt.Printf("  file:        %s\n", doc.Filename)
	if doc.FileDate != nil {
		fmt.Printf("  file date:   %s\n", doc.FileDate.Format("02/01/2006 15:04:05"))
	}
	fmt.Printf("  entries:     %d (corrected dates: %t)\n", len(doc.History), doc.HasCorrectedDates)
	fmt.Printf("  alerts:      %d critical, %d warning\n", critical, warning)
	if soh, ok := doc.Stats["SOH"]; ok {
		fmt.Printf("  SOH:         %s\n", soh)
	}
	if cycles, ok := doc.Stats["Charge Cnt."]; ok {
		fmt.Printf("  cycles:      %s\n", cycles)
	}
	fmt.Println()
}

func runAnalyze(args *argSpec) error {
	manager := fleet.NewManager(args.thresholds())

	if args.Analyze.FromDB {
		s, err := openStore(args.DBPath)
		if err != nil {
			return err
		}
		docs, err := s.GetAll()
		s.Close()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := manager.Add(doc); err != nil {
				log.Warn(err.Error())
			}
		}
	}
	if len(args.Analyze.Files) > 0 {
		loadFiles(manager, args.Analyze.Files)
	}

	result := manager.Analyze()
	if result == nil {
		return fmt.Errorf("no batteries to analyze")
	}

	printAnalysis(result)

	if args.Analyze.Cells {
		printCellImbalance(manager)
	}
	return nil
}

func printAnalysis(result *analysis.Result) {
	fmt.Println("=== Battery health ===")
	for _, h := range result.BatteryHealth {
		fmt.Printf("%-24s SOH %d%% (%s)  score %.1f  status %s  cycles %d  est. life %.1f years\n",
			h.DisplayName, h.SOH, h.SOHSource, h.HealthScore, h.HealthStatus, h.Cycles, h.EstimatedLifeYears)
	}

	fmt.Println("\n=== Degradation ===")
	for _, d := range result.DegradationAnalysis {
		fmt.Printf("%-24s %s (voltage %.2f%%, SOC %.2f%%, recent avg %.2fV, older avg %.2fV)\n",
			d.DisplayName, d.Trend, d.DegradationRate, d.SOCDegradation, d.RecentAvgVoltage, d.OlderAvgVoltage)
	}

	fmt.Println("\n=== Cell balance ===")
	for _, b := range result.CellBalance {
		fmt.Printf("%-24s %s (max spread %.0fmV, avg %.0fmV)\n",
			b.DisplayName, b.BalanceStatus, b.MaxSpreadMV, b.AvgSpreadMV)
	}

	if len(result.PerformanceComparison) > 0 {
		fmt.Println("\n=== Performance ranking ===")
		for _, p := range result.PerformanceComparison {
			fmt.Printf("#%d %-24s score %.1f (%s)  SOH %d%%  cycles %d  avg %.2fV / %.1f°C  alerts %d\n",
				p.Rank, p.DisplayName, p.Score, p.Relative, p.SOH, p.Cycles, p.AvgVoltage, p.AvgTemp, p.AlertCount)
		}
	}

	fmt.Println("\n=== Risk assessment ===")
	for _, r := range result.RiskAssessment {
		fmt.Printf("%-24s %s (score %d)\n", r.DisplayName, r.Level, r.Score)
		for _, factor := range r.Factors {
			fmt.Printf("    - %s\n", factor)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Println("\n=== Recommendations ===")
		for _, rec := range result.Recommendations {
			fmt.Printf("[%s] %s: %s\n", rec.Severity, rec.Battery, rec.Message)
		}
	}
}

// printCellImbalance shows the per-cell spread of the most recent
// sample that carries cell telemetry, for each loaded battery.
func printCellImbalance(manager *fleet.Manager) {
	fmt.Println("\n=== Per-cell imbalance (most recent sample) ===")
	for _, battery := range manager.Batteries() {
		doc := battery.Doc
		var imbalance *analysis.CellImbalance
		for i := range doc.History {
			if ci := analysis.CalculateCellImbalance(&doc.History[i]); ci != nil {
				imbalance = ci
				break
			}
		}
		if imbalance == nil {
			fmt.Printf("%-24s no cell telemetry\n", doc.DisplayName)
			continue
		}
		fmt.Printf("%-24s %d cells, %.0fmV spread (min %.3fV, max %.3fV, avg %.3fV) at %s\n",
			doc.DisplayName, imbalance.CellCount, imbalance.Imbalance*1000,
			imbalance.MinVoltage, imbalance.MaxVoltage, imbalance.AvgVoltage, imbalance.Timestamp)
	}
}
