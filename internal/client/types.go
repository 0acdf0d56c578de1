package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

// Client определяет интерфейс клиента REST API квизов.
type Client interface {
	// ListQuizzes возвращает список квизов.
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)

	// CreateQuiz создает квиз.
	CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error)

	// GetQuiz возвращает квиз вместе с вопросами.
	GetQuiz(ctx context.Context, quizID int64) (*models.Quiz, error)

	// UpdateQuiz изменяет квиз.
	UpdateQuiz(ctx context.Context, quizID int64, in models.QuizInput) (*models.Quiz, error)

	// CreateQuestion добавляет вопрос в квиз.
	CreateQuestion(ctx context.Context, quizID int64, in models.QuestionInput) (*models.Question, error)

	// UpdateQuestion изменяет вопрос.
	UpdateQuestion(ctx context.Context, questionID int64, in models.QuestionInput) (*models.Question, error)

	// DeleteQuestion удаляет вопрос.
	DeleteQuestion(ctx context.Context, questionID int64) error

	AttemptAPI
}

// AttemptAPI - часть API, нужная для прохождения квиза.
type AttemptAPI interface {
	// StartAttempt начинает попытку.
	StartAttempt(ctx context.Context, quizID int64) (*models.Attempt, error)

	// AnswerQuestion отправляет ответ на один вопрос.
	AnswerQuestion(ctx context.Context, attemptID int64, req models.AnswerRequest) error

	// SubmitAttempt завершает попытку и возвращает результат.
	SubmitAttempt(ctx context.Context, attemptID int64) (*models.AttemptResult, error)

	// RecordEvent записывает событие прокторинга.
	RecordEvent(ctx context.Context, attemptID int64, event string) error
}

// Пути API.
const (
	pathQuizzes  = "/quizzes"
	pathAttempts = "/attempts"
)

func pathQuiz(quizID int64) string          { return fmt.Sprintf("/quizzes/%d", quizID) }
func pathQuizQuestions(quizID int64) string { return fmt.Sprintf("/quizzes/%d/questions", quizID) }
func pathQuizResults(quizID int64) string   { return fmt.Sprintf("/quizzes/%d/results.csv", quizID) }
func pathQuestion(questionID int64) string  { return fmt.Sprintf("/questions/%d", questionID) }
func pathAnswer(attemptID int64) string     { return fmt.Sprintf("/attempts/%d/answer", attemptID) }
func pathSubmit(attemptID int64) string     { return fmt.Sprintf("/attempts/%d/submit", attemptID) }
func pathEvents(attemptID int64) string     { return fmt.Sprintf("/attempts/%d/events", attemptID) }

// Значения по умолчанию
const (
	DefaultBaseURL = "http://localhost:4000/"
	DefaultTimeout = 30 * time.Second
)

// Ошибки клиента
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoAttempt         = errors.New("attempt id is required")
)

// APIError - ответ бэкенда с кодом не из диапазона 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("client api error: status %d: %s", e.StatusCode, e.Message)
}
