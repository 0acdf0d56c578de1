package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/storage"
)

// HTTPClient реализует Client через REST API бэкенда.
type HTTPClient struct {
	baseURL    *url.URL
	tokens     storage.TokenStore
	httpClient *http.Client
	log        *slog.Logger
}

// Option настраивает HTTPClient.
type Option func(c *HTTPClient)

// WithHTTPClient подменяет http.Client (например, для тестов).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithLogger задает логгер клиента.
func WithLogger(log *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.log = log
	}
}

// NewHTTPClient создаёт клиента для бэкенда по адресу baseURL.
// Токен читается из tokens перед каждым запросом.
func NewHTTPClient(baseURL string, tokens storage.TokenStore, opts ...Option) (*HTTPClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &HTTPClient{
		baseURL:    u,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListQuizzes возвращает список квизов.
func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := c.doRequest(ctx, http.MethodGet, pathQuizzes, nil, &quizzes); err != nil {
		return nil, err
	}

	if quizzes == nil {
		quizzes = []models.Quiz{}
	}

	return quizzes, nil
}

// CreateQuiz создает квиз.
func (c *HTTPClient) CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.doRequest(ctx, http.MethodPost, pathQuizzes, in, &quiz); err != nil {
		return nil, err
	}

	if quiz.ID == 0 {
		return nil, fmt.Errorf("%w: quiz without id", ErrMalformedResponse)
	}

	return &quiz, nil
}

// GetQuiz возвращает квиз вместе с вопросами.
func (c *HTTPClient) GetQuiz(ctx context.Context, quizID int64) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.doRequest(ctx, http.MethodGet, pathQuiz(quizID), nil, &quiz); err != nil {
		return nil, err
	}

	if quiz.ID == 0 {
		return nil, fmt.Errorf("%w: quiz without id", ErrMalformedResponse)
	}

	return &quiz, nil
}

// UpdateQuiz изменяет квиз.
func (c *HTTPClient) UpdateQuiz(ctx context.Context, quizID int64, in models.QuizInput) (*models.Quiz, error) {
	body := struct {
		ID int64 `json:"id"`
		models.QuizInput
	}{ID: quizID, QuizInput: in}

	var quiz models.Quiz
	if err := c.doRequest(ctx, http.MethodPatch, pathQuiz(quizID), body, &quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// CreateQuestion добавляет вопрос в квиз.
func (c *HTTPClient) CreateQuestion(
	ctx context.Context,
	quizID int64,
	in models.QuestionInput,
) (*models.Question, error) {
	var question models.Question
	if err := c.doRequest(ctx, http.MethodPost, pathQuizQuestions(quizID), in, &question); err != nil {
		return nil, err
	}

	if question.ID == 0 {
		return nil, fmt.Errorf("%w: question without id", ErrMalformedResponse)
	}

	return &question, nil
}

// UpdateQuestion изменяет вопрос.
func (c *HTTPClient) UpdateQuestion(
	ctx context.Context,
	questionID int64,
	in models.QuestionInput,
) (*models.Question, error) {
	body := struct {
		ID int64 `json:"id"`
		models.QuestionInput
	}{ID: questionID, QuestionInput: in}

	var question models.Question
	if err := c.doRequest(ctx, http.MethodPatch, pathQuestion(questionID), body, &question); err != nil {
		return nil, err
	}

	return &question, nil
}

// DeleteQuestion удаляет вопрос.
func (c *HTTPClient) DeleteQuestion(ctx context.Context, questionID int64) error {
	return c.doRequest(ctx, http.MethodDelete, pathQuestion(questionID), nil, nil)
}

// StartAttempt начинает попытку прохождения квиза quizID.
func (c *HTTPClient) StartAttempt(ctx context.Context, quizID int64) (*models.Attempt, error) {
	var attempt models.Attempt
	err := c.doRequest(ctx, http.MethodPost, pathAttempts, models.StartAttemptRequest{QuizID: quizID}, &attempt)
	if err != nil {
		return nil, err
	}

	if attempt.ID == 0 {
		return nil, fmt.Errorf("%w: attempt without id", ErrMalformedResponse)
	}

	return &attempt, nil
}

// AnswerQuestion отправляет ответ на один вопрос попытки.
func (c *HTTPClient) AnswerQuestion(ctx context.Context, attemptID int64, req models.AnswerRequest) error {
	if attemptID == 0 {
		return ErrNoAttempt
	}

	return c.doRequest(ctx, http.MethodPost, pathAnswer(attemptID), req, nil)
}

// SubmitAttempt завершает попытку и возвращает результат.
func (c *HTTPClient) SubmitAttempt(ctx context.Context, attemptID int64) (*models.AttemptResult, error) {
	if attemptID == 0 {
		return nil, ErrNoAttempt
	}

	var result models.AttemptResult
	if err := c.doRequest(ctx, http.MethodPost, pathSubmit(attemptID), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// RecordEvent записывает событие прокторинга для попытки.
func (c *HTTPClient) RecordEvent(ctx context.Context, attemptID int64, event string) error {
	if attemptID == 0 {
		return ErrNoAttempt
	}

	return c.doRequest(ctx, http.MethodPost, pathEvents(attemptID), models.EventRequest{Event: event}, nil)
}

// ExportResults скачивает CSV с результатами попыток квиза.
func (c *HTTPClient) ExportResults(ctx context.Context, quizID int64) ([]byte, error) {
	return c.do(ctx, http.MethodGet, pathQuizResults(quizID), nil)
}

// doRequest выполняет запрос к API и декодирует тело ответа в out.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	params any,
	out any,
) error {
	data, err := c.do(ctx, method, path, params)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, path, err)
	}

	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params any) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path).String()

	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read access token: %w", err)
		}
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to do %s request for %s: %w", method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", path, err)
	}

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return data, nil
}

func newAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var result struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &result); err == nil {
		apiErr.Message = result.Error
		if apiErr.Message == "" {
			apiErr.Message = result.Message
		}
	}

	return apiErr
}

// ErrorMessage возвращает сообщение бэкенда, если err - APIError с текстом.
func ErrorMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message, true
	}
	return "", false
}
