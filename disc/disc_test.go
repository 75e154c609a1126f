package disc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
)

func answersFor(picks map[disc.Factor]int) map[string]string {
	answers := make(map[string]string)
	i := 0
	for _, f := range disc.Factors {
		for n := 0; n < picks[f]; n++ {
			answers[disc.Items[i].Key] = string(f)
			i++
		}
	}
	return answers
}

func TestItemBank(t *testing.T) {
	require.Len(t, disc.Items, 24)
	for _, it := range disc.Items {
		require.Len(t, it.Options, 4)
		assert.Equal(t, disc.FactorD, it.Options[0].Factor)
		assert.Equal(t, disc.FactorC, it.Options[3].Factor)
	}
	assert.Equal(t, "q1", disc.ItemKeys()[0])
	assert.Equal(t, "q24", disc.ItemKeys()[23])
}

func TestScore_EvenSplit(t *testing.T) {
	s, err := disc.Score(answersFor(map[disc.Factor]int{disc.FactorD: 6, disc.FactorI: 6, disc.FactorS: 6, disc.FactorC: 6}))
	require.NoError(t, err)
	assert.Equal(t, disc.Scores{D: 25, I: 25, S: 25, C: 25}, s)
}

func TestScore_RoundingSumsTo100(t *testing.T) {
	// 10/24 = 41.67, 7/24 = 29.17, 5/24 = 20.83, 2/24 = 8.33
	s, err := disc.Score(answersFor(map[disc.Factor]int{disc.FactorD: 10, disc.FactorI: 7, disc.FactorS: 5, disc.FactorC: 2}))
	require.NoError(t, err)
	assert.Equal(t, 100, s.Total())
	assert.Equal(t, disc.Scores{D: 42, I: 29, S: 21, C: 8}, s)
	assert.Equal(t, disc.FactorD, s.Primary())
}

func TestScore_Errors(t *testing.T) {
	_, err := disc.Score(map[string]string{"q99": "D"})
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = disc.Score(map[string]string{"q1": "X"})
	assert.ErrorIs(t, err, generic.ErrValidation)

	s, err := disc.Score(nil)
	require.NoError(t, err)
	assert.Equal(t, disc.Scores{}, s)
	assert.Equal(t, disc.Factor(""), s.Primary())
}

func TestPrimary_TieBreaksInOrder(t *testing.T) {
	assert.Equal(t, disc.FactorI, disc.Scores{D: 10, I: 40, S: 40, C: 10}.Primary())
	assert.Equal(t, disc.FactorD, disc.Scores{D: 25, I: 25, S: 25, C: 25}.Primary())
}

func TestAssessmentValidate(t *testing.T) {
	a := disc.Assessment{Status: disc.StatusCompleted, Scores: disc.Scores{D: 120}}
	err := a.Validate()
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "employee_id")
	assert.Contains(t, verr.Fields, "scores.D")

	a = disc.Assessment{EmployeeID: "e1", Status: disc.StatusCompleted}
	require.ErrorAs(t, a.Validate(), &verr)
	assert.Contains(t, verr.Fields, "scores")
}

func TestFinalize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	a := disc.Assessment{EmployeeID: "e1", Status: disc.StatusCompleted, Scores: disc.Scores{D: 10, I: 20, S: 50, C: 20}}
	a.Finalize(now)
	assert.Equal(t, disc.FactorS, a.PrimaryProfile)
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, now, *a.CompletedAt)
}

func TestComputeStats(t *testing.T) {
	items := []disc.Assessment{
		{Status: disc.StatusCompleted, Scores: disc.Scores{D: 40, I: 30, S: 20, C: 10}, PrimaryProfile: disc.FactorD},
		{Status: disc.StatusCompleted, Scores: disc.Scores{D: 20, I: 20, S: 50, C: 10}},
		{Status: disc.StatusCompleted, Scores: disc.Scores{D: 50, I: 10, S: 10, C: 30}, PrimaryProfile: disc.FactorD},
		{Status: disc.StatusPending},
	}

	stats := disc.ComputeStats(items)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 36.67, stats.Average.D)
	assert.Equal(t, 20.0, stats.Average.I)
	assert.Equal(t, 26.67, stats.Average.S)
	assert.Equal(t, 16.67, stats.Average.C)

	require.Len(t, stats.Profiles, 4)
	assert.Equal(t, "Dominance", stats.Profiles[0].Name)
	assert.Equal(t, 2, stats.Profiles[0].Count)
	assert.Equal(t, 66.67, stats.Profiles[0].Percentage)
	assert.Equal(t, 1, stats.Profiles[2].Count, "missing primary profile is derived from scores")
}
