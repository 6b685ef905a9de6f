package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanFilterKeepsOrderAndDropsEmptyBatches(t *testing.T) {
	plan := Plan{
		{"modules/vpc", "stacks/a"},
		{"modules/eks"},
		{"stacks/b", "stacks/c"},
	}
	got := FilterPlan(plan, "stacks/")
	require.Equal(t, Plan{{"stacks/a"}, {"stacks/b", "stacks/c"}}, got)
	require.Len(t, plan, 3, "source plan must be untouched")
	require.Equal(t, []string{"modules/vpc", "stacks/a"}, plan[0])
}

func TestPlanFilterNoMatch(t *testing.T) {
	plan := Plan{{"a"}, {"b"}}
	require.Empty(t, plan.Filter("zzz"))
	require.Equal(t, plan, plan.Filter(""))
}

func TestPlanHelpers(t *testing.T) {
	plan := Plan{{"a", "b"}, {"c"}}
	require.Equal(t, 2, plan.Len())
	require.Equal(t, 3, plan.Size())
	require.Equal(t, 1, plan.Index("c"))
	require.Equal(t, -1, plan.Index("missing"))
	require.Equal(t, []string{"a", "b", "c"}, plan.Artifacts())

	clone := plan.Clone()
	clone[0][0] = "mutated"
	require.Equal(t, "a", plan[0][0])
}
