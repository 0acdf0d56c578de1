package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/mockapi"
	"github.com/letsssgooo/quizctl/internal/storage"
)

func ptr(v models.AnswerValue) *models.AnswerValue {
	return &v
}

func newTestClient(t *testing.T, serverToken, clientToken string) (*HTTPClient, *mockapi.Engine) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine := mockapi.NewEngine()
	srv := httptest.NewServer(mockapi.NewServer(engine,
		mockapi.WithToken(serverToken),
		mockapi.WithLogger(discard),
	).Handler())
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, storage.NewMemoryStorage(clientToken), WithLogger(discard))
	require.NoError(t, err)

	return c, engine
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:4000", nil)
	assert.Error(t, err)

	c, err := NewHTTPClient("", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:4000", c.baseURL.Host)
}

func TestHTTPClient_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, "secret", "")

	_, err := c.ListQuizzes(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	msg, ok := ErrorMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Unauthorized", msg)
}

func TestHTTPClient_QuizCRUD(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "secret", "secret")

	quizzes, err := c.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Empty(t, quizzes)
	assert.NotNil(t, quizzes)

	created, err := c.CreateQuiz(ctx, models.QuizInput{
		Title:            "Go basics",
		Description:      "Warm-up",
		TimeLimitSeconds: 900,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := c.UpdateQuiz(ctx, created.ID, models.QuizInput{
		Title:            "Go basics",
		Description:      "Warm-up",
		TimeLimitSeconds: 2700,
		IsPublished:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2700, updated.TimeLimitSeconds)
	assert.True(t, updated.IsPublished)

	_, err = c.CreateQuiz(ctx, models.QuizInput{Title: "x", Description: "y", TimeLimitSeconds: 5})
	msg, ok := ErrorMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "Time limit must be at least 30 seconds")

	question, err := c.CreateQuestion(ctx, created.ID, models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Prompt:        "Pick B",
		Options:       []string{"A", "B"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	})
	require.NoError(t, err)

	_, err = c.UpdateQuestion(ctx, question.ID, models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Prompt:        "Pick B, really",
		Options:       []string{"A", "B"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	})
	require.NoError(t, err)

	quiz, err := c.GetQuiz(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "Pick B, really", quiz.Questions[0].Prompt)

	require.NoError(t, c.DeleteQuestion(ctx, question.ID))

	_, err = c.GetQuiz(ctx, 999)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestHTTPClient_AttemptRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, engine := newTestClient(t, "", "")

	quiz := engine.CreateQuiz(models.QuizInput{Title: "t", Description: "d", TimeLimitSeconds: 900})
	question, err := engine.CreateQuestion(quiz.ID, models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Prompt:        "Pick B",
		Options:       []string{"A", "B"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	})
	require.NoError(t, err)

	attempt, err := c.StartAttempt(ctx, quiz.ID)
	require.NoError(t, err)

	require.NoError(t, c.AnswerQuestion(ctx, attempt.ID, models.AnswerRequest{
		QuestionID: question.ID,
		Value:      models.IndexValue(1),
	}))
	require.NoError(t, c.RecordEvent(ctx, attempt.ID, "Ctrl+V pressed"))

	result, err := c.SubmitAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	require.Len(t, result.Details, 1)
	assert.True(t, result.Details[0].Correct)
	assert.Equal(t, "B", result.Details[0].Expected)

	events := engine.Events(attempt.ID)
	require.Len(t, events, 1)
	assert.Equal(t, "Ctrl+V pressed", events[0].Event)

	report, err := c.ExportResults(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Rank,AttemptID")
}

func TestHTTPClient_NoAttempt(t *testing.T) {
	c, _ := newTestClient(t, "", "")

	assert.ErrorIs(t, c.AnswerQuestion(context.Background(), 0, models.AnswerRequest{QuestionID: 1}), ErrNoAttempt)
	assert.ErrorIs(t, c.RecordEvent(context.Background(), 0, "x"), ErrNoAttempt)

	_, err := c.SubmitAttempt(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoAttempt)
}

func TestHTTPClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	_, err = c.GetQuiz(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestHTTPClient_RequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, storage.NewMemoryStorage("tok"))
	require.NoError(t, err)

	require.NoError(t, c.DeleteQuestion(context.Background(), 7))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}
