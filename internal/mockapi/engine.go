package mockapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

// Ошибки движка
var (
	ErrNotFound         = errors.New("not found")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrForeignQuestion  = errors.New("question does not belong to the attempt quiz")
	ErrInvalidAnswer    = errors.New("invalid answer value")
)

// Event - событие прокторинга, записанное для попытки.
type Event struct {
	ID        int64     `json:"id"`
	AttemptID int64     `json:"attemptId"`
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"createdAt"`
}

type attemptRun struct {
	attempt models.Attempt
	answers map[int64]models.AnswerValue // ключ - questionID
	result  *models.AttemptResult
}

// Engine хранит квизы, вопросы и попытки в памяти и считает результаты.
type Engine struct {
	quizzes   map[int64]*models.Quiz     // ключ - quizID, без вопросов
	questions map[int64]*models.Question // ключ - questionID
	attempts  map[int64]*attemptRun      // ключ - attemptID
	events    map[int64][]Event          // ключ - attemptID
	lastID    int64
	now       func() time.Time
	mu        sync.RWMutex
}

// NewEngine создаёт пустой Engine.
func NewEngine() *Engine {
	return &Engine{
		quizzes:   make(map[int64]*models.Quiz),
		questions: make(map[int64]*models.Question),
		attempts:  make(map[int64]*attemptRun),
		events:    make(map[int64][]Event),
		now:       time.Now,
	}
}

// SetClock подменяет источник времени.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

func (e *Engine) nextID() int64 {
	e.lastID++
	return e.lastID
}

// ListQuizzes возвращает квизы без вопросов, отсортированные по ID.
func (e *Engine) ListQuizzes() []models.Quiz {
	e.mu.RLock()
	defer e.mu.RUnlock()

	quizzes := make([]models.Quiz, 0, len(e.quizzes))
	for _, q := range e.quizzes {
		quizzes = append(quizzes, *q)
	}

	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].ID < quizzes[j].ID
	})

	return quizzes
}

// CreateQuiz создает квиз.
func (e *Engine) CreateQuiz(in models.QuizInput) models.Quiz {
	e.mu.Lock()
	defer e.mu.Unlock()

	createdAt := e.now()
	quiz := &models.Quiz{
		ID:               e.nextID(),
		Title:            in.Title,
		Description:      in.Description,
		TimeLimitSeconds: in.TimeLimitSeconds,
		IsPublished:      in.IsPublished,
		CreatedAt:        &createdAt,
	}
	e.quizzes[quiz.ID] = quiz

	return *quiz
}

// GetQuiz возвращает квиз с вопросами, упорядоченными по позиции.
func (e *Engine) GetQuiz(quizID int64) (models.Quiz, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	quiz, ok := e.quizzes[quizID]
	if !ok {
		return models.Quiz{}, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
	}

	result := *quiz
	result.Questions = e.quizQuestions(quizID)

	return result, nil
}

// UpdateQuiz изменяет квиз.
func (e *Engine) UpdateQuiz(quizID int64, in models.QuizInput) (models.Quiz, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	quiz, ok := e.quizzes[quizID]
	if !ok {
		return models.Quiz{}, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
	}

	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.TimeLimitSeconds = in.TimeLimitSeconds
	quiz.IsPublished = in.IsPublished

	return *quiz, nil
}

// CreateQuestion добавляет вопрос в конец квиза.
func (e *Engine) CreateQuestion(quizID int64, in models.QuestionInput) (models.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.quizzes[quizID]; !ok {
		return models.Question{}, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
	}

	position := 0
	for _, q := range e.quizQuestions(quizID) {
		if q.Position >= position {
			position = q.Position + 1
		}
	}

	question := &models.Question{
		ID:            e.nextID(),
		QuizID:        quizID,
		Position:      position,
		Type:          in.Type,
		Prompt:        in.Prompt,
		Options:       append([]string(nil), in.Options...),
		CorrectAnswer: in.CorrectAnswer,
	}
	e.questions[question.ID] = question

	return *question, nil
}

// UpdateQuestion изменяет вопрос. Позиция, занятая другим вопросом, меняется местами.
func (e *Engine) UpdateQuestion(questionID int64, in models.QuestionInput) (models.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	question, ok := e.questions[questionID]
	if !ok {
		return models.Question{}, fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}

	if in.Position != question.Position {
		for _, other := range e.questions {
			if other.QuizID == question.QuizID && other.ID != question.ID && other.Position == in.Position {
				other.Position = question.Position
				break
			}
		}
		question.Position = in.Position
	}

	question.Type = in.Type
	question.Prompt = in.Prompt
	question.Options = append([]string(nil), in.Options...)
	question.CorrectAnswer = in.CorrectAnswer

	return *question, nil
}

// DeleteQuestion удаляет вопрос.
func (e *Engine) DeleteQuestion(questionID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.questions[questionID]; !ok {
		return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	delete(e.questions, questionID)

	return nil
}

// StartAttempt создаёт новую попытку для квиза.
func (e *Engine) StartAttempt(quizID int64) (models.Attempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.quizzes[quizID]; !ok {
		return models.Attempt{}, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
	}

	run := &attemptRun{
		attempt: models.Attempt{
			ID:        e.nextID(),
			QuizID:    quizID,
			StartedAt: e.now(),
			Status:    models.AttemptStatusInProgress,
		},
		answers: make(map[int64]models.AnswerValue),
	}
	e.attempts[run.attempt.ID] = run

	return run.attempt, nil
}

// SubmitAnswer регистрирует ответ. Засчитывается только первый ответ на вопрос.
func (e *Engine) SubmitAnswer(attemptID int64, req models.AnswerRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	run, ok := e.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
	}
	if run.attempt.Status == models.AttemptStatusSubmitted {
		return fmt.Errorf("attempt %d: %w", attemptID, ErrAttemptSubmitted)
	}

	question, ok := e.questions[req.QuestionID]
	if !ok || question.QuizID != run.attempt.QuizID {
		return fmt.Errorf("question %d: %w", req.QuestionID, ErrForeignQuestion)
	}

	if idx, isIndex := req.Value.Index(); question.Type == models.QuestionTypeMCQ &&
		(!isIndex || idx < 0 || idx >= len(question.Options)) {
		return fmt.Errorf("question %d: %w", req.QuestionID, ErrInvalidAnswer)
	}

	if _, ok = run.answers[req.QuestionID]; ok {
		return nil
	}
	run.answers[req.QuestionID] = req.Value

	return nil
}

// Submit завершает попытку и считает результат.
func (e *Engine) Submit(attemptID int64) (models.AttemptResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	run, ok := e.attempts[attemptID]
	if !ok {
		return models.AttemptResult{}, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
	}
	if run.attempt.Status == models.AttemptStatusSubmitted {
		return models.AttemptResult{}, fmt.Errorf("attempt %d: %w", attemptID, ErrAttemptSubmitted)
	}

	result := models.AttemptResult{Details: make([]models.ResultDetail, 0)}
	for _, question := range e.quizQuestions(run.attempt.QuizID) {
		answer, answered := run.answers[question.ID]
		correct := answered && isCorrect(question, answer)
		if correct {
			result.Score++
		}

		result.Details = append(result.Details, models.ResultDetail{
			QuestionID: question.ID,
			Correct:    correct,
			Expected:   expectedDisplay(question),
		})
	}

	submittedAt := e.now()
	run.attempt.Status = models.AttemptStatusSubmitted
	run.attempt.SubmittedAt = &submittedAt
	run.result = &result

	return result, nil
}

// RecordEvent добавляет событие прокторинга.
func (e *Engine) RecordEvent(attemptID int64, event string) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.attempts[attemptID]; !ok {
		return Event{}, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
	}

	ev := Event{
		ID:        e.nextID(),
		AttemptID: attemptID,
		Event:     event,
		CreatedAt: e.now(),
	}
	e.events[attemptID] = append(e.events[attemptID], ev)

	return ev, nil
}

// Events возвращает события попытки в порядке записи.
func (e *Engine) Events(attemptID int64) []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]Event(nil), e.events[attemptID]...)
}

// Attempt возвращает попытку по ID.
func (e *Engine) Attempt(attemptID int64) (models.Attempt, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	run, ok := e.attempts[attemptID]
	if !ok {
		return models.Attempt{}, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
	}

	return run.attempt, nil
}

// Answers возвращает принятые ответы попытки.
func (e *Engine) Answers(attemptID int64) map[int64]models.AnswerValue {
	e.mu.RLock()
	defer e.mu.RUnlock()

	answers := make(map[int64]models.AnswerValue)
	if run, ok := e.attempts[attemptID]; ok {
		for k, v := range run.answers {
			answers[k] = v
		}
	}

	return answers
}

// ExportCSV экспортирует результаты завершенных попыток квиза в CSV.
func (e *Engine) ExportCSV(quizID int64) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, ok := e.quizzes[quizID]; !ok {
		return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
	}

	total := strconv.Itoa(len(e.quizQuestions(quizID)))

	runs := make([]*attemptRun, 0)
	for _, run := range e.attempts {
		if run.attempt.QuizID == quizID && run.result != nil {
			runs = append(runs, run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].result.Score != runs[j].result.Score {
			return runs[i].result.Score > runs[j].result.Score
		}
		return runs[i].attempt.ID < runs[j].attempt.ID
	})

	records := make([][]string, len(runs)+1)
	records[0] = []string{
		"Rank",
		"AttemptID",
		"StartedAt",
		"SubmittedAt",
		"Score",
		"Total",
		"Duration",
		"Events",
	}
	for i, run := range runs {
		var duration float64
		submittedAt := ""
		if run.attempt.SubmittedAt != nil {
			submittedAt = run.attempt.SubmittedAt.Format(time.RFC3339)
			duration = run.attempt.SubmittedAt.Sub(run.attempt.StartedAt).Seconds()
		}

		records[i+1] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(run.attempt.ID, 10),
			run.attempt.StartedAt.Format(time.RFC3339),
			submittedAt,
			strconv.Itoa(run.result.Score),
			total,
			fmt.Sprintf("%v", duration),
			strconv.Itoa(len(e.events[run.attempt.ID])),
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// quizQuestions возвращает копии вопросов квиза. Вызывать под блокировкой.
func (e *Engine) quizQuestions(quizID int64) []models.Question {
	questions := make([]models.Question, 0)
	for _, q := range e.questions {
		if q.QuizID == quizID {
			questions = append(questions, *q)
		}
	}

	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Position != questions[j].Position {
			return questions[i].Position < questions[j].Position
		}
		return questions[i].ID < questions[j].ID
	})

	return questions
}

func isCorrect(question models.Question, answer models.AnswerValue) bool {
	if question.CorrectAnswer == nil {
		return false
	}

	if question.Type == models.QuestionTypeMCQ {
		want, ok := question.CorrectAnswer.Index()
		got, isIndex := answer.Index()
		return ok && isIndex && want == got
	}

	want, ok := question.CorrectAnswer.Text()
	got, isText := answer.Text()
	return ok && isText && strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}

func expectedDisplay(question models.Question) string {
	if option, ok := question.CorrectOption(); ok {
		return option
	}
	if question.CorrectAnswer == nil {
		return ""
	}
	return question.Display(*question.CorrectAnswer)
}
