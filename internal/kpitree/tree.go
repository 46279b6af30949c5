// Package kpitree assembles KPI definitions and their period values
// into the hierarchy served to the dashboard. It is pure computation;
// callers fetch the rows.
package kpitree

import (
	"math"

	"kpi-dashboard/internal/model"
)

// Benchmark band verdicts for a resolved target.
const (
	StatusValid   = "valid"
	StatusWarning = "warning"
	StatusDanger  = "danger"
)

// Node is one KPI in the assembled tree. Target is the effective target
// for the requested period; AchievementRate is nil unless both a usable
// target and an actual exist.
type Node struct {
	ID              string   `json:"id"`
	Agent           string   `json:"agent"`
	Category        string   `json:"category"`
	Name            string   `json:"name"`
	Unit            string   `json:"unit"`
	Level           int      `json:"level"`
	Description     string   `json:"description,omitempty"`
	DefaultTarget   *float64 `json:"default_target,omitempty"`
	BenchmarkMin    *float64 `json:"benchmark_min,omitempty"`
	BenchmarkMax    *float64 `json:"benchmark_max,omitempty"`
	Target          *float64 `json:"target,omitempty"`
	Actual          *float64 `json:"actual,omitempty"`
	AchievementRate *int     `json:"achievement_rate,omitempty"`
	BenchmarkStatus string   `json:"benchmark_status,omitempty"`
	Children        []*Node  `json:"children"`
}

type periodKey struct {
	kpiID string
	month int
}

// Build assembles the tree for one (year, month) period.
//
// Target resolution per node: the month-specific target row, else the
// annual (nil-month) row for the same year, else the definition's
// default target. Actuals match the exact period only.
//
// filterID narrows the result to that node and its descendants while
// keeping the level-1 root as the anchor; an empty or unknown filter
// deliberately returns the full tree. Non-root nodes whose parent is
// missing from the kept set are dropped, so filtering on a node deeper
// than the root's own children yields the bare root.
func Build(defs []model.KpiDefinition, targets []model.KpiTarget, actuals []model.KpiActual, year, month int, filterID string) []*Node {
	monthTargets := make(map[periodKey]float64)
	annualTargets := make(map[string]float64)
	for _, t := range targets {
		if t.Year != year {
			continue
		}
		if t.Month == nil {
			annualTargets[t.KpiID] = t.TargetValue
		} else if *t.Month == month {
			monthTargets[periodKey{t.KpiID, month}] = t.TargetValue
		}
	}

	actualValues := make(map[string]float64)
	for _, a := range actuals {
		if a.Year == year && a.Month == month {
			actualValues[a.KpiID] = a.ActualValue
		}
	}

	nodes := make(map[string]*Node, len(defs))
	children := make(map[string][]*Node, len(defs))
	var roots []*Node
	for i := range defs {
		d := &defs[i]
		n := &Node{
			ID:            d.ID,
			Agent:         d.Agent,
			Category:      d.Category,
			Name:          d.Name,
			Unit:          d.Unit,
			Level:         d.Level,
			Description:   d.Description,
			DefaultTarget: d.DefaultTarget,
			BenchmarkMin:  d.BenchmarkMin,
			BenchmarkMax:  d.BenchmarkMax,
			Children:      []*Node{},
		}

		if v, ok := monthTargets[periodKey{d.ID, month}]; ok {
			n.Target = &v
		} else if v, ok := annualTargets[d.ID]; ok {
			n.Target = &v
		} else {
			n.Target = d.DefaultTarget
		}
		if v, ok := actualValues[d.ID]; ok {
			n.Actual = &v
		}
		if n.Target != nil && *n.Target != 0 && n.Actual != nil {
			rate := int(math.Round(*n.Actual / *n.Target * 100))
			n.AchievementRate = &rate
		}
		n.BenchmarkStatus = BenchmarkStatus(d.BenchmarkMin, d.BenchmarkMax, n.Target)

		nodes[d.ID] = n
		if d.Level == 1 || d.ParentKpiID == nil {
			if d.Level == 1 {
				roots = append(roots, n)
			}
			continue
		}
		children[*d.ParentKpiID] = append(children[*d.ParentKpiID], n)
	}

	for id, n := range nodes {
		n.Children = append(n.Children, children[id]...)
	}

	if filterID == "" {
		return roots
	}
	target, ok := nodes[filterID]
	if !ok {
		return roots
	}
	if target.Level == 1 {
		return []*Node{target}
	}

	out := make([]*Node, 0, len(roots))
	for _, r := range roots {
		if !contains(r, filterID) {
			continue
		}
		// The anchor keeps only children it is actually the parent of;
		// a deeper filter node would be an orphan and is dropped.
		anchor := *r
		anchor.Children = []*Node{}
		for _, c := range r.Children {
			if c.ID == filterID {
				anchor.Children = []*Node{target}
				break
			}
		}
		out = append(out, &anchor)
	}
	if len(out) == 0 {
		return roots
	}
	return out
}

func contains(n *Node, id string) bool {
	if n.ID == id {
		return true
	}
	for _, c := range n.Children {
		if contains(c, id) {
			return true
		}
	}
	return false
}

// BenchmarkStatus grades a resolved target against the benchmark band:
// inside the band is valid, an undershooting target is a warning, an
// overshooting one is danger. Any missing bound or target yields no
// verdict.
func BenchmarkStatus(min, max, target *float64) string {
	if min == nil || max == nil || target == nil {
		return ""
	}
	switch {
	case *target < *min:
		return StatusWarning
	case *target > *max:
		return StatusDanger
	default:
		return StatusValid
	}
}

// Count returns the number of nodes in a forest.
func Count(forest []*Node) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.Children)
	}
	return total
}
