package kpitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/internal/model"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int         { return &v }

// root -> a -> a1, root -> b
func testDefs() []model.KpiDefinition {
	return []model.KpiDefinition{
		{ID: "root", Name: "Revenue", Level: 1, DefaultTarget: f64Ptr(1000)},
		{ID: "a", Name: "Traffic", Level: 2, ParentKpiID: strPtr("root"), DefaultTarget: f64Ptr(200), BenchmarkMin: f64Ptr(150), BenchmarkMax: f64Ptr(300)},
		{ID: "b", Name: "CVR", Level: 2, ParentKpiID: strPtr("root"), DefaultTarget: f64Ptr(3)},
		{ID: "a1", Name: "Amazon", Level: 3, ParentKpiID: strPtr("a"), DefaultTarget: f64Ptr(80)},
	}
}

func TestBuildShape(t *testing.T) {
	forest := Build(testDefs(), nil, nil, 2025, 6, "")
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "root", root.ID)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].ID)
	assert.Equal(t, "b", root.Children[1].ID)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "a1", root.Children[0].Children[0].ID)
	assert.Equal(t, 4, Count(forest))

	// each child sits one level below its parent
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			assert.Equal(t, n.Level+1, c.Level)
			walk(c)
		}
	}
	walk(root)
}

func TestTargetResolution(t *testing.T) {
	targets := []model.KpiTarget{
		{KpiID: "a", Year: 2025, Month: intPtr(6), TargetValue: 250},
		{KpiID: "a", Year: 2025, Month: nil, TargetValue: 220},
		{KpiID: "b", Year: 2025, Month: nil, TargetValue: 4},
		// other periods never leak in
		{KpiID: "a1", Year: 2024, Month: intPtr(6), TargetValue: 999},
		{KpiID: "a1", Year: 2025, Month: intPtr(7), TargetValue: 888},
	}

	forest := Build(testDefs(), targets, nil, 2025, 6, "")
	root := forest[0]
	a, b := root.Children[0], root.Children[1]
	a1 := a.Children[0]

	// month row wins over the annual row
	require.NotNil(t, a.Target)
	assert.Equal(t, 250.0, *a.Target)
	// annual fallback
	require.NotNil(t, b.Target)
	assert.Equal(t, 4.0, *b.Target)
	// default fallback
	require.NotNil(t, a1.Target)
	assert.Equal(t, 80.0, *a1.Target)
	require.NotNil(t, root.Target)
	assert.Equal(t, 1000.0, *root.Target)
}

func TestAchievementRate(t *testing.T) {
	defs := []model.KpiDefinition{
		{ID: "root", Level: 1, DefaultTarget: f64Ptr(1000)},
		{ID: "zero", Level: 2, ParentKpiID: strPtr("root"), DefaultTarget: f64Ptr(0)},
		{ID: "none", Level: 2, ParentKpiID: strPtr("root")},
	}
	actuals := []model.KpiActual{
		{KpiID: "root", Year: 2025, Month: 6, ActualValue: 756},
		{KpiID: "zero", Year: 2025, Month: 6, ActualValue: 10},
		{KpiID: "none", Year: 2025, Month: 6, ActualValue: 10},
	}

	forest := Build(defs, nil, actuals, 2025, 6, "")
	root := forest[0]

	require.NotNil(t, root.AchievementRate)
	assert.Equal(t, 76, *root.AchievementRate) // rounded, not truncated

	// zero target gives no rate
	assert.Nil(t, root.Children[0].AchievementRate)
	// missing target gives no rate
	assert.Nil(t, root.Children[1].AchievementRate)
}

func TestZeroActualYieldsZeroRate(t *testing.T) {
	defs := []model.KpiDefinition{{ID: "root", Level: 1, DefaultTarget: f64Ptr(100)}}
	actuals := []model.KpiActual{{KpiID: "root", Year: 2025, Month: 6, ActualValue: 0}}

	forest := Build(defs, nil, actuals, 2025, 6, "")
	require.NotNil(t, forest[0].AchievementRate)
	assert.Equal(t, 0, *forest[0].AchievementRate)
}

func TestNoActualNoRate(t *testing.T) {
	forest := Build(testDefs(), nil, nil, 2025, 6, "")
	assert.Nil(t, forest[0].AchievementRate)
	assert.Nil(t, forest[0].Actual)
}

func TestFilterKeepsRootAnchor(t *testing.T) {
	forest := Build(testDefs(), nil, nil, 2025, 6, "a")
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "root", root.ID)
	require.Len(t, root.Children, 1)
	a := root.Children[0]
	assert.Equal(t, "a", a.ID)
	// descendants of the filtered node survive
	require.Len(t, a.Children, 1)
	assert.Equal(t, "a1", a.Children[0].ID)
}

func TestFilterOnDeepNodeYieldsBareRoot(t *testing.T) {
	forest := Build(testDefs(), nil, nil, 2025, 6, "a1")
	require.Len(t, forest, 1)

	// a1's parent is not the root, so the orphaned subtree is dropped
	// and only the anchor remains
	root := forest[0]
	assert.Equal(t, "root", root.ID)
	assert.Empty(t, root.Children)

	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			assert.Equal(t, n.Level+1, c.Level)
			walk(c)
		}
	}
	walk(root)
}

func TestFilterOnRootAndUnknown(t *testing.T) {
	full := Build(testDefs(), nil, nil, 2025, 6, "")
	onRoot := Build(testDefs(), nil, nil, 2025, 6, "root")
	unknown := Build(testDefs(), nil, nil, 2025, 6, "nope")

	assert.Equal(t, Count(full), Count(onRoot))
	assert.Equal(t, Count(full), Count(unknown))
}

func TestOrphansDropped(t *testing.T) {
	defs := append(testDefs(),
		model.KpiDefinition{ID: "lost", Level: 3, ParentKpiID: strPtr("ghost")},
		model.KpiDefinition{ID: "lost_child", Level: 4, ParentKpiID: strPtr("lost")},
	)

	forest := Build(defs, nil, nil, 2025, 6, "")
	assert.Equal(t, 4, Count(forest))
}

func TestNoDuplicateNodes(t *testing.T) {
	forest := Build(testDefs(), nil, nil, 2025, 6, "")
	seen := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		assert.False(t, seen[n.ID], "node %s appears twice", n.ID)
		seen[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range forest {
		walk(r)
	}
}

func TestBenchmarkStatus(t *testing.T) {
	min, max := f64Ptr(100), f64Ptr(200)

	assert.Equal(t, StatusValid, BenchmarkStatus(min, max, f64Ptr(150)))
	assert.Equal(t, StatusValid, BenchmarkStatus(min, max, f64Ptr(100)))
	assert.Equal(t, StatusValid, BenchmarkStatus(min, max, f64Ptr(200)))
	// an undershooting target warns, an overshooting one is danger
	assert.Equal(t, StatusWarning, BenchmarkStatus(min, max, f64Ptr(99)))
	assert.Equal(t, StatusDanger, BenchmarkStatus(min, max, f64Ptr(201)))
	assert.Equal(t, "", BenchmarkStatus(nil, max, f64Ptr(150)))
	assert.Equal(t, "", BenchmarkStatus(min, nil, f64Ptr(150)))
	assert.Equal(t, "", BenchmarkStatus(min, max, nil))
}
