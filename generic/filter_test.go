package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/generic"
)

type person struct {
	Name  string
	Email string
	Dept  string
}

var people = []person{
	{Name: "Ana Souza", Email: "ana@acme.test", Dept: "eng"},
	{Name: "Bruno Lima", Email: "bruno@acme.test", Dept: "sales"},
	{Name: "carla Dias", Email: "carla@other.test", Dept: "eng"},
}

func fields(p person) []string { return []string{p.Name, p.Email} }
func dept(p person) string     { return p.Dept }

func names(items []person) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

func TestFilter_EmptyFiltersKeepEverything(t *testing.T) {
	// GIVEN: an unset search box and an "all" department filter
	search := generic.Search("  ", fields)
	match := generic.Match("", dept)

	// THEN: both predicates are nil and Filter keeps every item
	assert.Nil(t, search)
	assert.Nil(t, match)
	assert.Len(t, generic.Filter(people, search, match), 3)

	// A nil input still serializes as an empty list.
	out := generic.Filter[person](nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFilter_SearchAndMatch(t *testing.T) {
	// Search is case-insensitive over any field.
	out := generic.Filter(people, generic.Search("ACME", fields))
	assert.Equal(t, []string{"Ana Souza", "Bruno Lima"}, names(out))

	// Predicates combine with AND, order is preserved.
	out = generic.Filter(people, generic.Search("a", fields), generic.Match("eng", dept))
	assert.Equal(t, []string{"Ana Souza", "carla Dias"}, names(out))

	// Match is exact.
	assert.Empty(t, generic.Filter(people, generic.Match("ENG", dept)))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, generic.SortKey{Field: "name"}, generic.ParseSort("name", "email"))
	assert.Equal(t, generic.SortKey{Field: "name", Desc: true}, generic.ParseSort("-name", ""))
	assert.Equal(t, generic.SortKey{Field: "name"}, generic.ParseSort("+name", ""))
	assert.Equal(t, generic.SortKey{Field: "email", Desc: true}, generic.ParseSort(" ", "-email"))
	assert.Equal(t, generic.SortKey{}, generic.ParseSort("", ""))
}

func TestSort(t *testing.T) {
	cmps := generic.Comparators[person]{
		"name": func(a, b person) int { return generic.CompareFold(a.Name, b.Name) },
		"dept": func(a, b person) int { return generic.CompareFold(a.Dept, b.Dept) },
	}
	items := append([]person(nil), people...)

	// WHEN: sorting by name descending
	require.NoError(t, generic.Sort(items, generic.ParseSort("-name", ""), cmps))

	// THEN: case does not matter
	assert.Equal(t, []string{"carla Dias", "Bruno Lima", "Ana Souza"}, names(items))

	// Ties keep their previous order.
	require.NoError(t, generic.Sort(items, generic.ParseSort("dept", ""), cmps))
	assert.Equal(t, []string{"carla Dias", "Ana Souza", "Bruno Lima"}, names(items))

	// No key leaves the order alone.
	require.NoError(t, generic.Sort(items, generic.SortKey{}, cmps))

	err := generic.Sort(items, generic.ParseSort("salary", ""), cmps)
	assert.ErrorIs(t, err, generic.ErrValidation)
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sort")
}
