package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

func ptr(v models.AnswerValue) *models.AnswerValue {
	return &v
}

func TestSecondsToHoursAndMinutes(t *testing.T) {
	testCases := []struct {
		seconds int
		want    string
	}{
		{0, "0m"},
		{-5, "0m"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m 30s"},
		{3600, "1h"},
		{3661, "1h 1m 1s"},
		{PresetLong, "45m"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, SecondsToHoursAndMinutes(tc.seconds), "seconds=%d", tc.seconds)
	}
}

func TestLetters(t *testing.T) {
	idx, ok := LetterToIndex("c")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = LetterToIndex("Z")
	assert.False(t, ok)

	assert.Equal(t, "B", IndexToLetter(1))
	assert.Equal(t, "7", IndexToLetter(6))
}

func TestValidateQuiz(t *testing.T) {
	err := ValidateQuiz(models.QuizInput{
		Title:            "Go basics",
		Description:      "Channels and goroutines",
		TimeLimitSeconds: PresetShort,
	})
	require.NoError(t, err)

	err = ValidateQuiz(models.QuizInput{TimeLimitSeconds: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title is required", verr.Message("title"))
	assert.Equal(t, "Description is required", verr.Message("description"))
	assert.Equal(t, "Time limit must be at least 30 seconds", verr.Message("timeLimitSeconds"))

	err = ValidateQuiz(models.QuizInput{Title: "t", Description: "d"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Time limit is required", verr.Message("timeLimitSeconds"))

	err = ValidateQuiz(models.QuizInput{Title: "t", Description: "d", TimeLimitSeconds: MaxTimeLimitSeconds + 1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message("timeLimitSeconds"), "at most")
}

func TestValidateQuestion_MCQ(t *testing.T) {
	valid := models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Prompt:        "Pick B",
		Options:       []string{"A", "B", "C"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	}
	require.NoError(t, ValidateQuestion(valid))

	testCases := []struct {
		name    string
		mutate  func(in *models.QuestionInput)
		field   string
		message string
	}{
		{
			name:    "missing prompt",
			mutate:  func(in *models.QuestionInput) { in.Prompt = "" },
			field:   "prompt",
			message: "Question is required",
		},
		{
			name:    "missing options",
			mutate:  func(in *models.QuestionInput) { in.Options = nil; in.CorrectAnswer = ptr(models.IndexValue(0)) },
			field:   "options",
			message: "Options is required",
		},
		{
			name:    "single option",
			mutate:  func(in *models.QuestionInput) { in.Options = []string{"A"}; in.CorrectAnswer = ptr(models.IndexValue(0)) },
			field:   "options",
			message: "Enter at least 2 options",
		},
		{
			name:    "correct out of range",
			mutate:  func(in *models.QuestionInput) { in.CorrectAnswer = ptr(models.IndexValue(3)) },
			field:   "correctAnswer",
			message: "Correct answer is out of range",
		},
		{
			name:    "correct as text",
			mutate:  func(in *models.QuestionInput) { in.CorrectAnswer = ptr(models.TextValue("B")) },
			field:   "correctAnswer",
			message: "Select the correct option",
		},
		{
			name:    "missing correct",
			mutate:  func(in *models.QuestionInput) { in.CorrectAnswer = nil },
			field:   "correctAnswer",
			message: "Answer is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			in.Options = append([]string(nil), valid.Options...)
			tc.mutate(&in)

			var verr *ValidationError
			require.ErrorAs(t, ValidateQuestion(in), &verr)
			assert.Equal(t, tc.message, verr.Message(tc.field))
		})
	}
}

func TestValidateQuestion_ShortAndCode(t *testing.T) {
	for _, typ := range []models.QuestionType{models.QuestionTypeShort, models.QuestionTypeCode} {
		in := models.QuestionInput{Type: typ, Prompt: "2+2?", CorrectAnswer: ptr(models.TextValue("4"))}
		require.NoError(t, ValidateQuestion(in), typ)

		in.CorrectAnswer = ptr(models.TextValue("   "))
		var verr *ValidationError
		require.ErrorAs(t, ValidateQuestion(in), &verr)
		assert.Equal(t, "Answer is required", verr.Message("correctAnswer"))
	}
}

func TestValidateQuestion_UnknownType(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, ValidateQuestion(models.QuestionInput{Type: "essay", Prompt: "?"}), &verr)
	assert.Equal(t, "Type must be one of mcq, short, code", verr.Message("type"))
}

func TestNormalizeQuestion(t *testing.T) {
	in := NormalizeQuestion(models.QuestionInput{
		Type:          "essay",
		Prompt:        "?",
		Options:       []string{"A"},
		CorrectAnswer: ptr(models.TextValue("x")),
	})
	assert.Nil(t, in.CorrectAnswer)
	assert.Nil(t, in.Options)

	in = NormalizeQuestion(models.QuestionInput{
		Type:          models.QuestionTypeCode,
		Prompt:        "print 1",
		Options:       []string{"stale"},
		CorrectAnswer: ptr(models.TextValue("1")),
	})
	require.NotNil(t, in.CorrectAnswer)
	assert.Nil(t, in.Options)

	in = NormalizeQuestion(models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Options:       []string{"A", "B"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	})
	assert.Len(t, in.Options, 2)
	require.NotNil(t, in.CorrectAnswer)
}
