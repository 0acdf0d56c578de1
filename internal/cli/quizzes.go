package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/quiz"
)

// maxParallelGets ограничивает число одновременных запросов quiz get.
const maxParallelGets = 4

func (a *App) runQuiz(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: quiz needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "list":
		return a.listQuizzes(ctx)
	case "get":
		return a.getQuizzes(ctx, args[1:])
	case "create":
		return a.createQuiz(ctx, args[1:])
	case "update":
		return a.updateQuiz(ctx, args[1:])
	case "results":
		return a.exportResults(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown quiz subcommand %q", ErrUsage, args[0])
	}
}

func (a *App) listQuizzes(ctx context.Context) error {
	quizzes, err := a.api.ListQuizzes(ctx)
	if err != nil {
		return a.failed(titleListQuizzes, err)
	}

	printQuizList(a.out, quizzes)
	return nil
}

// getQuizzes загружает квизы параллельно и печатает их в порядке аргументов.
func (a *App) getQuizzes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: expected at least one quiz id", ErrUsage)
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	quizzes := make([]*models.Quiz, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelGets)

	for i, id := range ids {
		g.Go(func() error {
			q, err := a.api.GetQuiz(gctx, id)
			if err != nil {
				return fmt.Errorf("quiz %d: %w", id, err)
			}
			quizzes[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return a.failed(titleGetQuiz, err)
	}

	for i, q := range quizzes {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		printQuiz(a.out, q)
	}
	return nil
}

func quizFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "quiz title")
	fs.String("description", "", "quiz description")
	fs.Int("time-limit", 0, "time limit in seconds")
	fs.String("preset", "", "time limit preset: short (15m) or long (45m)")
	fs.Bool("published", false, "publish the quiz")
}

// applyQuizFlags переносит заданные флаги в форму квиза.
func applyQuizFlags(fs *pflag.FlagSet, in models.QuizInput) (models.QuizInput, error) {
	if fs.Changed("title") {
		in.Title, _ = fs.GetString("title")
	}
	if fs.Changed("description") {
		in.Description, _ = fs.GetString("description")
	}
	if fs.Changed("preset") {
		preset, _ := fs.GetString("preset")
		switch preset {
		case "short":
			in.TimeLimitSeconds = quiz.PresetShort
		case "long":
			in.TimeLimitSeconds = quiz.PresetLong
		default:
			return in, fmt.Errorf("%w: unknown preset %q", ErrUsage, preset)
		}
	}
	if fs.Changed("time-limit") {
		in.TimeLimitSeconds, _ = fs.GetInt("time-limit")
	}
	if fs.Changed("published") {
		in.IsPublished, _ = fs.GetBool("published")
	}
	return in, nil
}

func (a *App) createQuiz(ctx context.Context, args []string) error {
	fs := a.flagSet("quiz create")
	quizFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	in, err := applyQuizFlags(fs, models.QuizInput{})
	if err != nil {
		return err
	}
	if err = quiz.ValidateQuiz(in); err != nil {
		return a.invalid(err)
	}

	created, err := a.api.CreateQuiz(ctx, in)
	if err != nil {
		return a.failed(titleCreateQuiz, err)
	}

	a.notifier.Success(titleCreateQuiz, fmt.Sprintf("Quiz %d created", created.ID))
	printQuiz(a.out, created)
	return nil
}

// updateQuiz меняет только заданные флагами поля, остальные берутся
// из текущего состояния квиза.
func (a *App) updateQuiz(ctx context.Context, args []string) error {
	fs := a.flagSet("quiz update")
	quizFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	id, err := oneID(fs.Args(), "quiz id")
	if err != nil {
		return err
	}

	current, err := a.api.GetQuiz(ctx, id)
	if err != nil {
		return a.failed(titleUpdateQuiz, err)
	}

	in, err := applyQuizFlags(fs, models.QuizInput{
		Title:            current.Title,
		Description:      current.Description,
		TimeLimitSeconds: current.TimeLimitSeconds,
		IsPublished:      current.IsPublished,
	})
	if err != nil {
		return err
	}
	if err = quiz.ValidateQuiz(in); err != nil {
		return a.invalid(err)
	}

	updated, err := a.api.UpdateQuiz(ctx, id, in)
	if err != nil {
		return a.failed(titleUpdateQuiz, err)
	}

	a.notifier.Success(titleUpdateQuiz, fmt.Sprintf("Quiz %d updated", updated.ID))
	printQuiz(a.out, updated)
	return nil
}

func (a *App) exportResults(ctx context.Context, args []string) error {
	fs := a.flagSet("quiz results")
	output := fs.StringP("output", "o", "", "write CSV to file instead of stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	id, err := oneID(fs.Args(), "quiz id")
	if err != nil {
		return err
	}

	report, err := a.api.ExportResults(ctx, id)
	if err != nil {
		return a.failed(titleExportResults, err)
	}

	if *output == "" {
		_, err = a.out.Write(report)
		return err
	}

	if err = os.WriteFile(*output, report, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	a.notifier.Success(titleExportResults, "Results saved to "+*output)
	return nil
}
