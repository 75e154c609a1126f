package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/generic"
)

func TestDistribution(t *testing.T) {
	// GIVEN: answers including values off the 1-5 scale
	values := []int{5, 4, 4, 0, 6, -1, 1}

	// WHEN: distributing
	points := generic.Distribution(values)

	// THEN: five points, off-scale values ignored in counts and percentages
	require.Len(t, points, 5)
	assert.Equal(t, generic.ScalePoint{Value: 1, Count: 1, Percentage: 25}, points[0])
	assert.Equal(t, generic.ScalePoint{Value: 2, Count: 0, Percentage: 0}, points[1])
	assert.Equal(t, generic.ScalePoint{Value: 4, Count: 2, Percentage: 50}, points[3])
	assert.Equal(t, generic.ScalePoint{Value: 5, Count: 1, Percentage: 25}, points[4])
}

func TestDistribution_Empty(t *testing.T) {
	points := generic.Distribution(nil)
	require.Len(t, points, 5)
	for i, p := range points {
		assert.Equal(t, i+1, p.Value)
		assert.Zero(t, p.Count)
		assert.Zero(t, p.Percentage)
	}
}

func TestAverages(t *testing.T) {
	assert.Equal(t, 0.0, generic.Average(nil))
	assert.Equal(t, 3.33, generic.AverageInts([]int{3, 3, 4}))
	assert.Equal(t, 33.33, generic.Percentage(1, 3))
	assert.Equal(t, 0.0, generic.Percentage(1, 0))
	assert.Equal(t, 2.35, generic.Round(2.346, 2))
	assert.Equal(t, -2.0, generic.Round(-1.5, 0))
}

func TestDecimalAggregates(t *testing.T) {
	total := generic.Sum([]decimal.Decimal{
		decimal.RequireFromString("0.1"),
		decimal.RequireFromString("0.2"),
		decimal.RequireFromString("1000"),
	})
	assert.Equal(t, "1000.3", total.String())
	assert.Equal(t, "333.43", generic.AverageDecimal(total, 3).String())
	assert.True(t, generic.AverageDecimal(total, 0).IsZero())
}

func TestGroupAndCount(t *testing.T) {
	groups := generic.GroupBy(people, dept)
	assert.Equal(t, []string{"Ana Souza", "carla Dias"}, names(groups["eng"]))

	counts := generic.CountBy(people, dept)
	assert.Equal(t, map[string]int{"eng": 2, "sales": 1}, counts)
	assert.Equal(t, []string{"eng", "sales"}, generic.SortedKeys(counts))
}
