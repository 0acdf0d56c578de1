package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/quiz"
)

var errQuestionNotFound = errors.New("question not found")

func (a *App) runQuestion(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: question needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "create":
		return a.saveQuestion(ctx, args[1:], false)
	case "update":
		return a.saveQuestion(ctx, args[1:], true)
	case "delete":
		return a.deleteQuestion(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown question subcommand %q", ErrUsage, args[0])
	}
}

func questionFlags(fs *pflag.FlagSet) {
	fs.String("type", "", "question type: mcq, short or code")
	fs.String("prompt", "", "question text")
	fs.StringArray("option", nil, "answer option, repeat for every option (mcq)")
	fs.String("answer", "", "correct answer: option letter or index for mcq, text otherwise")
	fs.Int("position", 0, "position of the question in the quiz")
}

// questionInput собирает форму вопроса из флагов.
func questionInput(fs *pflag.FlagSet) models.QuestionInput {
	typ, _ := fs.GetString("type")
	prompt, _ := fs.GetString("prompt")
	options, _ := fs.GetStringArray("option")
	answer, _ := fs.GetString("answer")
	position, _ := fs.GetInt("position")

	in := models.QuestionInput{
		Type:     models.QuestionType(strings.ToLower(strings.TrimSpace(typ))),
		Prompt:   prompt,
		Options:  options,
		Position: position,
	}
	in.CorrectAnswer = parseAnswer(in.Type, answer)

	return quiz.NormalizeQuestion(in)
}

// parseAnswer переводит правильный ответ из командной строки в значение.
// Для mcq принимается буква варианта или его индекс. Нераспознанное
// значение остается текстом, его отклонит валидация.
func parseAnswer(typ models.QuestionType, raw string) *models.AnswerValue {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	v := models.TextValue(raw)
	if typ == models.QuestionTypeMCQ {
		if idx, ok := quiz.LetterToIndex(raw); ok {
			v = models.IndexValue(idx)
		} else if idx, err := strconv.Atoi(raw); err == nil {
			v = models.IndexValue(idx)
		}
	}
	return &v
}

func (a *App) saveQuestion(ctx context.Context, args []string, update bool) error {
	name, title, what := "question create", titleCreateQuestion, "quiz id"
	if update {
		name, title, what = "question update", titleUpdateQuestion, "question id"
	}

	fs := a.flagSet(name)
	questionFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	id, err := oneID(fs.Args(), what)
	if err != nil {
		return err
	}

	in := questionInput(fs)
	if err = quiz.ValidateQuestion(in); err != nil {
		return a.invalid(err)
	}
	if update && !fs.Changed("position") {
		current, err := a.findQuestion(ctx, id)
		if err != nil {
			return a.failed(title, err)
		}
		in.Position = current.Position
	}

	var saved *models.Question
	if update {
		saved, err = a.api.UpdateQuestion(ctx, id, in)
	} else {
		saved, err = a.api.CreateQuestion(ctx, id, in)
	}
	if err != nil {
		return a.failed(title, err)
	}

	verb := "created"
	if update {
		verb = "updated"
	}
	a.notifier.Success(title, fmt.Sprintf("Question %d %s", saved.ID, verb))
	printQuestions(a.out, []models.Question{*saved})
	return nil
}

// findQuestion ищет вопрос по всем квизам. Отдельного запроса вопроса
// в API нет.
func (a *App) findQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	quizzes, err := a.api.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	found := make(chan models.Question, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelGets)

	for _, listed := range quizzes {
		g.Go(func() error {
			q, err := a.api.GetQuiz(gctx, listed.ID)
			if err != nil {
				return fmt.Errorf("quiz %d: %w", listed.ID, err)
			}
			for _, question := range q.Questions {
				if question.ID == questionID {
					found <- question
				}
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	select {
	case question := <-found:
		return &question, nil
	default:
		return nil, fmt.Errorf("question %d: %w", questionID, errQuestionNotFound)
	}
}

func (a *App) deleteQuestion(ctx context.Context, args []string) error {
	id, err := oneID(args, "question id")
	if err != nil {
		return err
	}

	if err = a.api.DeleteQuestion(ctx, id); err != nil {
		return a.failed(titleDeleteQuestion, err)
	}

	a.notifier.Success(titleDeleteQuestion, fmt.Sprintf("Question %d deleted", id))
	return nil
}
