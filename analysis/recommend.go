package analysis

import "sort"

// Recommendation severities.
const (
	RecommendCritical = "critical"
	RecommendWarning  = "warning"
	RecommendInfo     = "info"
)

// Recommendation is one prioritized maintenance action. Priority 1 is
// the most urgent.
type Recommendation struct {
	Severity string `json:"type"`
	Battery  string `json:"battery"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// fleetLabel names collection-wide recommendations.
const fleetLabel = "Whole fleet"

// Recommend emits prioritized maintenance recommendations, per battery
// and, when at least two batteries are loaded, fleet-wide. The list is
// sorted by ascending priority, stable for equal priorities.
func Recommend(batteries []Battery) []Recommendation {
	var recs []Recommendation

	for _, battery := range batteries {
		doc := battery.Doc
		soh := statInt(doc, "SOH", 100)
		cycles := statInt(doc, "Charge Cnt.", 0)
		critical := criticalCount(battery.Alerts)

		if soh < 80 {
			recs = append(recs, Recommendation{
				Severity: RecommendCritical,
				Battery:  doc.DisplayName,
				Message:  "Urgent replacement recommended - critical SOH",
				Priority: 1,
			})
		} else if soh < 90 {
			recs = append(recs, Recommendation{
				Severity: RecommendWarning,
				Battery:  doc.DisplayName,
				Message:  "Enhanced monitoring recommended - declining SOH",
				Priority: 2,
			})
		}

		if cycles > 5000 {
			recs = append(recs, Recommendation{
				Severity: RecommendInfo,
				Battery:  doc.DisplayName,
				Message:  "Plan replacement - high cycle count",
				Priority: 2,
			})
		}

		if critical > 0 {
			recs = append(recs, Recommendation{
				Severity: RecommendCritical,
				Battery:  doc.DisplayName,
				Message:  "Immediate intervention required - critical alerts",
				Priority: 1,
			})
		}
	}

	if len(batteries) > 1 {
		var sum float64
		for _, battery := range batteries {
			sum += float64(statInt(battery.Doc, "SOH", 100))
		}
		if sum/float64(len(batteries)) < 85 {
			recs = append(recs, Recommendation{
				Severity: RecommendWarning,
				Battery:  fleetLabel,
				Message:  "Fleet-wide battery aging",
				Priority: 2,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
	return recs
}
