package quiz

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

// ErrValidation - общая ошибка валидации формы.
var ErrValidation = errors.New("validation error")

// Границы лимита времени квиза в секундах.
const (
	MinTimeLimitSeconds = 30
	MaxTimeLimitSeconds = 60 * 60 * 60 * 2
)

// FieldError - сообщение, привязанное к полю формы.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError содержит ошибки по полям. Запрос с такой формой не отправляется.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Message возвращает сообщение для поля или пустую строку.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, message string) {
	if e.Message(field) != "" {
		return
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	sort.SliceStable(e.Fields, func(i, j int) bool { return e.Fields[i].Field < e.Fields[j].Field })
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator возвращает общий экземпляр валидатора с json-именами полей.
func Validator() *validator.Validate {
	return validate
}

var fieldMessages = map[string]string{
	"title.required":            "Title is required",
	"description.required":      "Description is required",
	"timeLimitSeconds.required": "Time limit is required",
	"timeLimitSeconds.min":      fmt.Sprintf("Time limit must be at least %d seconds", MinTimeLimitSeconds),
	"timeLimitSeconds.max":      fmt.Sprintf("Time limit must be at most %d seconds", MaxTimeLimitSeconds),
	"type.required":             "Type is required",
	"type.oneof":                "Type must be one of mcq, short, code",
	"prompt.required":           "Question is required",
	"position.min":              "Position must not be negative",
}

func collect(err error) *ValidationError {
	verr := &ValidationError{}
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("form", err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
		}
		verr.add(fe.Field(), msg)
	}

	return verr
}

// ValidateQuiz проверяет форму квиза до отправки запроса.
func ValidateQuiz(in models.QuizInput) error {
	return collect(validate.Struct(in)).orNil()
}

// ValidateQuestion проверяет форму вопроса до отправки запроса.
func ValidateQuestion(in models.QuestionInput) error {
	verr := collect(validate.Struct(in))

	switch in.Type {
	case models.QuestionTypeMCQ:
		if len(in.Options) == 0 {
			verr.add("options", "Options is required")
		} else if len(in.Options) < 2 {
			verr.add("options", "Enter at least 2 options")
		}

		for i, option := range in.Options {
			if strings.TrimSpace(option) == "" {
				verr.add("options", fmt.Sprintf("Option %d is empty", i+1))
				break
			}
		}

		if in.CorrectAnswer == nil {
			verr.add("correctAnswer", "Answer is required")
			break
		}
		idx, ok := in.CorrectAnswer.Index()
		if !ok {
			verr.add("correctAnswer", "Select the correct option")
		} else if idx < 0 || idx >= len(in.Options) {
			verr.add("correctAnswer", "Correct answer is out of range")
		}
	case models.QuestionTypeShort, models.QuestionTypeCode:
		if in.CorrectAnswer == nil {
			verr.add("correctAnswer", "Answer is required")
			break
		}
		text, ok := in.CorrectAnswer.Text()
		if !ok || strings.TrimSpace(text) == "" {
			verr.add("correctAnswer", "Answer is required")
		}
	}

	return verr.orNil()
}

// NormalizeQuestion оставляет правильный ответ только для известных типов.
// Для short и code ответ хранится как текст.
func NormalizeQuestion(in models.QuestionInput) models.QuestionInput {
	switch in.Type {
	case models.QuestionTypeMCQ, models.QuestionTypeShort, models.QuestionTypeCode:
	default:
		in.CorrectAnswer = nil
	}

	if in.Type != models.QuestionTypeMCQ {
		in.Options = nil
	}

	return in
}
