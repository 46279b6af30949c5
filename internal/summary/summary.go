// Package summary computes the dashboard roll-up for one project and
// period. It is pure computation over rows the caller fetched.
package summary

import (
	"math"
	"sort"

	"kpi-dashboard/internal/model"
)

// alertThreshold is the achievement ratio below which a KPI is flagged.
const alertThreshold = 0.7

// maxAlerts caps the alert list at the worst performers.
const maxAlerts = 10

// KGI is one level-1 KPI with its period values. Missing values stay
// nil; definition defaults are not substituted here.
type KGI struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	BenchmarkMin *float64 `json:"benchmark_min,omitempty"`
	BenchmarkMax *float64 `json:"benchmark_max,omitempty"`
	TargetValue  *float64 `json:"target_value"`
	ActualValue  *float64 `json:"actual_value"`
}

// AgentScore counts target coverage and achievement per functional
// agent. Total counts definitions carrying any target row in the year,
// month-specific or annual.
type AgentScore struct {
	Agent    string `json:"agent"`
	Total    int    `json:"total"`
	Achieved int    `json:"achieved"`
}

// Alert is one underperforming KPI.
type Alert struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Agent           string  `json:"agent"`
	Unit            string  `json:"unit"`
	TargetValue     float64 `json:"target_value"`
	ActualValue     float64 `json:"actual_value"`
	AchievementRate float64 `json:"achievement_rate"`
}

// Summary is the dashboard payload. Key names follow the wire contract
// consumed by the dashboard client.
type Summary struct {
	KGIs        []KGI        `json:"kgis"`
	AgentScores []AgentScore `json:"agentScores"`
	Alerts      []Alert      `json:"alerts"`
}

// Input carries the project rows for one period. Targets and actuals
// may span other periods; Compute filters by Year and Month itself.
type Input struct {
	Defs    []model.KpiDefinition
	Targets []model.KpiTarget
	Actuals []model.KpiActual
	Year    int
	Month   int
}

// Compute builds the summary. The effective target per KPI is the
// month-specific row, else the annual row of the same year; unlike the
// tree view the definition default never stands in.
func Compute(in Input) *Summary {
	monthTargets := make(map[string]float64)
	annualTargets := make(map[string]float64)
	hasYearTarget := make(map[string]bool)
	for _, t := range in.Targets {
		if t.Year != in.Year {
			continue
		}
		hasYearTarget[t.KpiID] = true
		if t.Month == nil {
			annualTargets[t.KpiID] = t.TargetValue
		} else if *t.Month == in.Month {
			monthTargets[t.KpiID] = t.TargetValue
		}
	}

	actuals := make(map[string]float64)
	for _, a := range in.Actuals {
		if a.Year == in.Year && a.Month == in.Month {
			actuals[a.KpiID] = a.ActualValue
		}
	}

	resolve := func(kpiID string) *float64 {
		if v, ok := monthTargets[kpiID]; ok {
			return &v
		}
		if v, ok := annualTargets[kpiID]; ok {
			return &v
		}
		return nil
	}

	out := &Summary{
		KGIs:        []KGI{},
		AgentScores: []AgentScore{},
		Alerts:      []Alert{},
	}

	scores := make(map[string]*AgentScore)
	for _, d := range in.Defs {
		target := resolve(d.ID)
		var actual *float64
		if v, ok := actuals[d.ID]; ok {
			actual = &v
		}

		if d.Level == 1 {
			out.KGIs = append(out.KGIs, KGI{
				ID:           d.ID,
				Name:         d.Name,
				Unit:         d.Unit,
				BenchmarkMin: d.BenchmarkMin,
				BenchmarkMax: d.BenchmarkMax,
				TargetValue:  target,
				ActualValue:  actual,
			})
		}

		// score coverage follows target rows anywhere in the year,
		// not just the requested month
		if hasYearTarget[d.ID] {
			sc, ok := scores[d.Agent]
			if !ok {
				sc = &AgentScore{Agent: d.Agent}
				scores[d.Agent] = sc
			}
			sc.Total++
			if target != nil && actual != nil && *actual >= *target {
				sc.Achieved++
			}
		}

		if target != nil && *target != 0 && actual != nil {
			ratio := *actual / *target
			if ratio < alertThreshold {
				out.Alerts = append(out.Alerts, Alert{
					ID:              d.ID,
					Name:            d.Name,
					Agent:           d.Agent,
					Unit:            d.Unit,
					TargetValue:     *target,
					ActualValue:     *actual,
					AchievementRate: math.Round(ratio*1000) / 10,
				})
			}
		}
	}

	for _, sc := range scores {
		out.AgentScores = append(out.AgentScores, *sc)
	}
	sort.Slice(out.AgentScores, func(i, j int) bool {
		return out.AgentScores[i].Agent < out.AgentScores[j].Agent
	})

	sort.SliceStable(out.Alerts, func(i, j int) bool {
		ri := out.Alerts[i].ActualValue / out.Alerts[i].TargetValue
		rj := out.Alerts[j].ActualValue / out.Alerts[j].TargetValue
		return ri < rj
	})
	if len(out.Alerts) > maxAlerts {
		out.Alerts = out.Alerts[:maxAlerts]
	}

	return out
}
