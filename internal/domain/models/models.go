package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Файл с моделями, которыми обмениваются клиент и бэкенд.
// Обработчики создают экземпляры моделей, заполняют их данными и
// передают в соответствующий метод клиента.

// QuestionType - тип вопроса.
type QuestionType string

const (
	QuestionTypeMCQ   QuestionType = "mcq"
	QuestionTypeShort QuestionType = "short"
	QuestionTypeCode  QuestionType = "code"
)

// Valid сообщает, входит ли тип в закрытый набор.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeShort, QuestionTypeCode:
		return true
	}
	return false
}

// AttemptStatus - состояние попытки.
type AttemptStatus string

const (
	AttemptStatusNotStarted AttemptStatus = "not_started"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

// Quiz определяет квиз вместе с вопросами.
type Quiz struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	IsPublished      bool       `json:"isPublished"`
	Questions        []Question `json:"questions,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

// QuestionCount возвращает количество вопросов, безопасно для nil.
func (q *Quiz) QuestionCount() int {
	if q == nil {
		return 0
	}
	return len(q.Questions)
}

// QuestionByID ищет вопрос по идентификатору.
func (q *Quiz) QuestionByID(id int64) (Question, bool) {
	if q == nil {
		return Question{}, false
	}
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Question определяет вопрос квиза.
type Question struct {
	ID            int64        `json:"id"`
	QuizID        int64        `json:"quizId,omitempty"`
	Position      int          `json:"position"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer *AnswerValue `json:"correctAnswer,omitempty"`
}

// CorrectOption возвращает текст правильного варианта для mcq вопроса.
func (q Question) CorrectOption() (string, bool) {
	if q.Type != QuestionTypeMCQ || q.CorrectAnswer == nil {
		return "", false
	}
	idx, ok := q.CorrectAnswer.Index()
	if !ok || idx < 0 || idx >= len(q.Options) {
		return "", false
	}
	return q.Options[idx], true
}

// Display возвращает значение ответа в том виде, в каком его видит пользователь.
func (q Question) Display(v AnswerValue) string {
	if idx, ok := v.Index(); ok {
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
		return strconv.Itoa(idx)
	}
	text, _ := v.Text()
	return text
}

// Attempt определяет попытку прохождения квиза.
type Attempt struct {
	ID          int64         `json:"id"`
	QuizID      int64         `json:"quizId"`
	StartedAt   time.Time     `json:"startedAt"`
	SubmittedAt *time.Time    `json:"submittedAt,omitempty"`
	Status      AttemptStatus `json:"status,omitempty"`
}

// ResultDetail - результат по одному вопросу.
type ResultDetail struct {
	QuestionID int64  `json:"questionId"`
	Correct    bool   `json:"correct"`
	Expected   string `json:"expected"`
}

// AttemptResult - итог попытки, который бэкенд отдает при отправке.
type AttemptResult struct {
	Score   int            `json:"score"`
	Details []ResultDetail `json:"details"`
}

// ScoreLine форматирует счет как score/total.
func (r *AttemptResult) ScoreLine(total int) string {
	if r == nil {
		return fmt.Sprintf("-/%d", total)
	}
	return fmt.Sprintf("%d/%d", r.Score, total)
}

// DetailByQuestion индексирует детали по идентификатору вопроса.
func (r *AttemptResult) DetailByQuestion() map[int64]ResultDetail {
	details := make(map[int64]ResultDetail)
	if r == nil {
		return details
	}
	for _, d := range r.Details {
		details[d.QuestionID] = d
	}
	return details
}

// ErrInvalidAnswerValue возвращается, если значение ответа не число и не строка.
var ErrInvalidAnswerValue = errors.New("answer value must be a number or a string")

// AnswerValue хранит либо индекс варианта (mcq), либо текст (short, code).
// В JSON индекс кодируется числом, текст - строкой.
type AnswerValue struct {
	index   int
	text    string
	isIndex bool
}

// IndexValue создает значение-индекс варианта.
func IndexValue(idx int) AnswerValue {
	return AnswerValue{index: idx, isIndex: true}
}

// TextValue создает текстовое значение.
func TextValue(text string) AnswerValue {
	return AnswerValue{text: text}
}

// Index возвращает индекс, если значение является индексом.
func (v AnswerValue) Index() (int, bool) {
	return v.index, v.isIndex
}

// Text возвращает текст, если значение текстовое.
func (v AnswerValue) Text() (string, bool) {
	return v.text, !v.isIndex
}

func (v AnswerValue) String() string {
	if v.isIndex {
		return strconv.Itoa(v.index)
	}
	return v.text
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.isIndex {
		return json.Marshal(v.index)
	}
	return json.Marshal(v.text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		*v = IndexValue(idx)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = TextValue(text)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidAnswerValue, string(data))
}

// QuizInput - тело запроса на создание или изменение квиза.
type QuizInput struct {
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description" validate:"required"`
	TimeLimitSeconds int    `json:"timeLimitSeconds" validate:"required,min=30,max=432000"`
	IsPublished      bool   `json:"isPublished"`
}

// QuestionInput - тело запроса на создание или изменение вопроса.
type QuestionInput struct {
	Type          QuestionType `json:"type" validate:"required,oneof=mcq short code"`
	Prompt        string       `json:"prompt" validate:"required"`
	Options       []string     `json:"options"`
	CorrectAnswer *AnswerValue `json:"correctAnswer"`
	Position      int          `json:"position" validate:"min=0"`
}

// StartAttemptRequest - тело запроса на старт попытки.
type StartAttemptRequest struct {
	QuizID int64 `json:"quizId" validate:"required"`
}

// AnswerRequest - тело запроса с ответом на вопрос.
type AnswerRequest struct {
	QuestionID int64       `json:"questionId" validate:"required"`
	Value      AnswerValue `json:"value"`
}

// EventRequest - тело запроса на запись события прокторинга.
type EventRequest struct {
	Event string `json:"event" validate:"required"`
}
