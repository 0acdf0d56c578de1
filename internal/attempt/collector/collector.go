// Package collector показывает вопросы попытки по одному и собирает ответы.
package collector

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

// Ошибки сборщика ответов
var (
	ErrNoQuestions  = errors.New("quiz has no questions")
	ErrNoSelection  = errors.New("answer is not selected")
	ErrInvalidValue = errors.New("invalid answer value")
)

// Collector хранит ответы на фиксированный список вопросов.
// Вопросы проходятся строго по порядку, без пропусков и возврата.
type Collector struct {
	questions  []models.Question
	index      int
	selected   *models.AnswerValue
	answers    map[int64]models.AnswerValue // ключ - questionID
	onAnswer   func(questionID int64, v models.AnswerValue)
	onComplete func(answers map[int64]models.AnswerValue)
	mu         sync.Mutex
}

// Option настраивает Collector.
type Option func(c *Collector)

// OnAnswer задает обработчик подтвержденного ответа.
func OnAnswer(fn func(questionID int64, v models.AnswerValue)) Option {
	return func(c *Collector) {
		c.onAnswer = fn
	}
}

// OnComplete задает обработчик ответа на последний вопрос.
func OnComplete(fn func(answers map[int64]models.AnswerValue)) Option {
	return func(c *Collector) {
		c.onComplete = fn
	}
}

// New создает Collector для вопросов в заданном порядке.
func New(questions []models.Question, opts ...Option) *Collector {
	c := &Collector{
		questions: append([]models.Question(nil), questions...),
		answers:   make(map[int64]models.AnswerValue),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Empty сообщает, что вопросов нет.
func (c *Collector) Empty() bool {
	return len(c.questions) == 0
}

// Len возвращает количество вопросов.
func (c *Collector) Len() int {
	return len(c.questions)
}

// Current возвращает текущий вопрос и его индекс.
func (c *Collector) Current() (models.Question, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Empty() {
		return models.Question{}, 0, false
	}
	return c.questions[c.index], c.index, true
}

// Position возвращает строку вида "Question 2 of 3".
func (c *Collector) Position() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Empty() {
		return "No questions"
	}
	return fmt.Sprintf("Question %d of %d", c.index+1, len(c.questions))
}

// Select выбирает ответ на текущий вопрос.
func (c *Collector) Select(v models.AnswerValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Empty() {
		return ErrNoQuestions
	}

	if err := validate(c.questions[c.index], v); err != nil {
		return err
	}

	c.selected = &v
	return nil
}

func validate(q models.Question, v models.AnswerValue) error {
	if q.Type == models.QuestionTypeMCQ {
		idx, ok := v.Index()
		if !ok || idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: option %s is out of range", ErrInvalidValue, v)
		}
		return nil
	}

	text, ok := v.Text()
	if !ok || strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: answer text is empty", ErrInvalidValue)
	}
	return nil
}

// Selected возвращает выбранный ответ на текущий вопрос.
func (c *Collector) Selected() (models.AnswerValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return models.AnswerValue{}, false
	}
	return *c.selected, true
}

// CanConfirm сообщает, можно ли подтвердить ответ.
func (c *Collector) CanConfirm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.selected != nil
}

// Confirm подтверждает выбранный ответ и переходит к следующему вопросу.
// После последнего вопроса вызывается onComplete и сборщик возвращается
// к первому вопросу.
func (c *Collector) Confirm() error {
	c.mu.Lock()
	if c.Empty() {
		c.mu.Unlock()
		return ErrNoQuestions
	}
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}

	question := c.questions[c.index]
	value := *c.selected
	c.answers[question.ID] = value
	c.selected = nil

	var complete map[int64]models.AnswerValue
	if c.index == len(c.questions)-1 {
		complete = c.answers
		c.answers = make(map[int64]models.AnswerValue)
		c.index = 0
	} else {
		c.index++
	}
	c.mu.Unlock()

	if c.onAnswer != nil {
		c.onAnswer(question.ID, value)
	}
	if complete != nil && c.onComplete != nil {
		c.onComplete(complete)
	}

	return nil
}

// Answers возвращает копию подтвержденных ответов.
func (c *Collector) Answers() map[int64]models.AnswerValue {
	c.mu.Lock()
	defer c.mu.Unlock()

	answers := make(map[int64]models.AnswerValue, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	return answers
}

// Reset возвращает сборщик к первому вопросу и забывает ответы.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.index = 0
	c.selected = nil
	c.answers = make(map[int64]models.AnswerValue)
	c.mu.Unlock()
}
