package generic

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATION - reduce/average/group-by over in-memory records
// =============================================================================

// Rating scale used by climate surveys and evaluations.
const (
	ScaleMin = 1
	ScaleMax = 5
)

// ScalePoint is one bar of a 1-5 distribution.
type ScalePoint struct {
	Value      int     `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution counts values on the fixed 1-5 scale.
// Values outside the scale are ignored. Always returns five points.
func Distribution(values []int) []ScalePoint {
	counts := make([]int, ScaleMax-ScaleMin+1)
	total := 0
	for _, v := range values {
		if v < ScaleMin || v > ScaleMax {
			continue
		}
		counts[v-ScaleMin]++
		total++
	}

	points := make([]ScalePoint, len(counts))
	for i, c := range counts {
		points[i] = ScalePoint{
			Value:      ScaleMin + i,
			Count:      c,
			Percentage: Percentage(c, total),
		}
	}
	return points
}

// Percentage returns part/total*100 rounded to two places, 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part)*100/float64(total), 2)
}

// Average returns the arithmetic mean rounded to two places, 0 for no values.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return Round(sum/float64(len(values)), 2)
}

// AverageInts is Average over integer answers.
func AverageInts(values []int) float64 {
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = float64(v)
	}
	return Average(fs)
}

// Sum adds decimal amounts exactly.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// AverageDecimal divides total by n, returning zero when n is 0.
func AverageDecimal(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// Round rounds v half away from zero to the given decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// GroupBy buckets items by key, preserving input order within each bucket.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// CountBy counts items per string key.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// SortedKeys returns map keys in ascending order for stable output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
