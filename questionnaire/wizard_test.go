package questionnaire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/questionnaire"
)

func threeQuestions() []questionnaire.Question {
	return []questionnaire.Question{
		{Key: "mission", Label: "What do you do?", Required: true},
		{Key: "size", Label: "Company size", Choices: []string{"small", "medium", "large"}, Required: true},
		{Key: "notes", Label: "Anything else?"},
	}
}

func TestWizard_NavigationClamps(t *testing.T) {
	w := questionnaire.New(threeQuestions())
	assert.True(t, w.IsFirst())

	assert.Equal(t, 0, w.Previous(), "previous on first question stays put")
	assert.Equal(t, 1, w.Next())
	assert.Equal(t, 2, w.Next())
	assert.Equal(t, 2, w.Next(), "next on last question stays put")
	assert.True(t, w.IsLast())

	q, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, "notes", q.Key)

	assert.Equal(t, 0, w.GoTo(-5))
	assert.Equal(t, 2, w.GoTo(99))
}

func TestWizard_EmptyQuestionList(t *testing.T) {
	w := questionnaire.New(nil)
	assert.Equal(t, 0, w.Next())
	assert.Equal(t, 0, w.Previous())
	_, ok := w.Current()
	assert.False(t, ok)
	assert.True(t, w.CanComplete())
	assert.Equal(t, 0.0, w.Progress())
}

func TestWizard_AnswerRules(t *testing.T) {
	w := questionnaire.New(threeQuestions())

	err := w.Answer("unknown", "x")
	assert.ErrorIs(t, err, generic.ErrValidation)

	err = w.Answer("size", "huge")
	assert.ErrorIs(t, err, generic.ErrValidation)

	require.NoError(t, w.Answer("size", " medium "))
	assert.Equal(t, "medium", w.Answers["size"])

	require.NoError(t, w.Answer("size", ""))
	_, present := w.Answers["size"]
	assert.False(t, present, "empty answer clears the key")
}

func TestWizard_CompleteRequiresAllRequiredKeys(t *testing.T) {
	// GIVEN: only the optional and one required question answered
	w := questionnaire.New(threeQuestions())
	require.NoError(t, w.Answer("notes", "none"))
	require.NoError(t, w.Answer("mission", "We build bridges"))

	// WHEN: completing
	assert.False(t, w.CanComplete())
	assert.Equal(t, []string{"size"}, w.Missing())
	_, err := w.Complete()

	// THEN: the missing key is reported
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"size": "is required"}, verr.Fields)
	assert.Equal(t, 66.67, w.Progress())

	require.NoError(t, w.Answer("size", "small"))
	answers, err := w.Complete()
	require.NoError(t, err)
	assert.Len(t, answers, 3)
	assert.Equal(t, 100.0, w.Progress())
}

func TestRestore_DropsStaleAnswersAndClamps(t *testing.T) {
	w := questionnaire.Restore(threeQuestions(), 7, map[string]string{
		"mission": "x",
		"removed": "y",
	})
	assert.Equal(t, 2, w.CurrentIndex)
	assert.Equal(t, map[string]string{"mission": "x"}, w.Answers)
}

func TestSession_SaveRoundTrip(t *testing.T) {
	s := questionnaire.Session{Kind: questionnaire.KindIdentity, SubjectID: "acme"}
	require.NoError(t, s.Validate())

	w := s.Wizard(threeQuestions())
	require.NoError(t, w.Answer("mission", "m"))
	w.Next()
	s.Save(w)

	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, "m", s.Answers["mission"])

	restored := s.Wizard(threeQuestions())
	assert.Equal(t, 1, restored.CurrentIndex)
}

func TestParseKind(t *testing.T) {
	k, err := questionnaire.ParseKind("disc")
	require.NoError(t, err)
	assert.Equal(t, questionnaire.KindDisc, k)

	_, err = questionnaire.ParseKind("poll")
	assert.ErrorIs(t, err, generic.ErrValidation)
}
