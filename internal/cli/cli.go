// Package cli реализует подкоманды quizctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizctl/internal/auth"
	"github.com/letsssgooo/quizctl/internal/client"
	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/notify"
	"github.com/letsssgooo/quizctl/internal/quiz"
	"github.com/letsssgooo/quizctl/internal/tui"
)

// ErrUsage возвращается при неверных аргументах командной строки.
var ErrUsage = errors.New("usage error")

// Заголовки уведомлений команд
const (
	titleLogin          = "Login"
	titleLogout         = "Logout"
	titleListQuizzes    = "List Quizzes"
	titleGetQuiz        = "Get Quiz"
	titleCreateQuiz     = "Create Quiz"
	titleUpdateQuiz     = "Update Quiz"
	titleExportResults  = "Export Results"
	titleCreateQuestion = "Create Question"
	titleUpdateQuestion = "Update Question"
	titleDeleteQuestion = "Delete Question"
	titleTakeQuiz       = "Take Quiz"
)

const usage = `Usage: quizctl [global flags] <command> [args]

Commands:
  login [token]                     save the access token (read from stdin if omitted)
  logout                            remove the saved token
  quiz list                         list quizzes
  quiz get <id>...                  show quizzes with their questions
  quiz create [flags]               create a quiz
  quiz update <id> [flags]          update a quiz
  quiz results <id> [--output f]    export submitted attempts as CSV
  question create <quizID> [flags]  add a question
  question update <id> [flags]      replace a question
  question delete <id>              delete a question
  take <quizID>                     take a quiz in full-screen mode
`

// API - часть клиента, нужная командам.
type API interface {
	client.Client

	// ExportResults возвращает отчет по попыткам квиза в CSV.
	ExportResults(ctx context.Context, quizID int64) ([]byte, error)
}

// TakeFunc проводит попытку прохождения квиза.
type TakeFunc func(ctx context.Context, q models.Quiz) (*models.AttemptResult, error)

// App выполняет подкоманды.
type App struct {
	api      API
	auth     auth.Authenticator
	notifier notify.Sender
	log      *slog.Logger
	out      io.Writer
	in       io.Reader
	take     TakeFunc
}

// Option настраивает App.
type Option func(a *App)

// WithOutput задает вывод команд.
func WithOutput(out io.Writer) Option {
	return func(a *App) {
		a.out = out
	}
}

// WithInput задает ввод для login без аргумента.
func WithInput(in io.Reader) Option {
	return func(a *App) {
		a.in = in
	}
}

// WithNotifier задает получателя уведомлений.
func WithNotifier(n notify.Sender) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithLogger задает логгер.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithTake подменяет прохождение квиза.
func WithTake(take TakeFunc) Option {
	return func(a *App) {
		a.take = take
	}
}

func New(api API, authenticator auth.Authenticator, opts ...Option) *App {
	a := &App{
		api:  api,
		auth: authenticator,
		log:  slog.Default(),
		out:  os.Stdout,
		in:   os.Stdin,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = notify.NewLogSender(a.log)
	}
	if a.take == nil {
		a.take = func(ctx context.Context, q models.Quiz) (*models.AttemptResult, error) {
			return tui.New(a.api, q, tui.WithLogger(a.log)).Run(ctx)
		}
	}
	return a
}

// Usage печатает справку.
func (a *App) Usage() {
	fmt.Fprint(a.out, usage)
}

// Run выполняет команду из args.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.Usage()
		return ErrUsage
	}

	a.log.Debug("running command", "args", args)

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout(ctx)
	case "quiz":
		return a.runQuiz(ctx, args[1:])
	case "question":
		return a.runQuestion(ctx, args[1:])
	case "take":
		return a.takeQuiz(ctx, args[1:])
	case "help":
		a.Usage()
		return nil
	default:
		a.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, s)
	}
	return id, nil
}

// oneID разбирает единственный позиционный аргумент-идентификатор.
func oneID(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one %s", ErrUsage, what)
	}
	return parseID(args[0])
}

// invalid печатает ошибки валидации рядом с полями.
func (a *App) invalid(err error) error {
	var verr *quiz.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(a.out, "%s: %s\n", f.Field, f.Message)
		}
	}
	return err
}

// failed показывает уведомление об ошибке запроса.
func (a *App) failed(title string, err error) error {
	a.notifier.Error(title, err)
	return fmt.Errorf("%s: %w", title, err)
}
