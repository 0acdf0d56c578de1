// Package tui проводит попытку прохождения квиза в полноэкранном
// терминальном интерфейсе.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rivo/tview"

	"github.com/letsssgooo/quizctl/internal/attempt"
	"github.com/letsssgooo/quizctl/internal/attempt/fullscreen"
	"github.com/letsssgooo/quizctl/internal/client"
	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/notify"
)

// Страницы интерфейса
const (
	pageInfo    = "info"
	pageAnswer  = "answer"
	pageSummary = "summary"
	pagePaused  = "paused"
)

var errQuestionNotShown = errors.New("question is not shown yet")

const pausedText = "Full-screen mode was left. This has been recorded.\nPress Ctrl+F to return."

// View - терминальный интерфейс попытки.
type View struct {
	app     *tview.Application
	orch    *attempt.Orchestrator
	screen  *fullscreen.Switch
	log     *slog.Logger
	session string

	root    *tview.Flex
	pages   *tview.Pages
	header  *tview.TextView
	info    *tview.TextView
	prompt  *tview.TextView
	input   *tview.Flex
	score   *tview.TextView
	summary *tview.Table
	status  *tview.TextView
	help    *tview.TextView

	// поля ввода текущего вопроса, меняются только в горутине интерфейса
	options   *tview.List
	shortText *tview.InputField
	codeText  *tview.TextArea
	rendered  questionKey

	ctx    context.Context
	latest atomic.Pointer[attempt.State]
	result atomic.Pointer[models.AttemptResult]
}

type questionKey struct {
	attemptID  int64
	questionID int64
}

// Option настраивает View.
type Option func(v *View)

// WithLogger задает логгер. Пока интерфейс занимает терминал, логгер
// не должен писать в stdout.
func WithLogger(log *slog.Logger) Option {
	return func(v *View) {
		v.log = log
	}
}

// WithApplication подменяет приложение tview, например с тестовым экраном.
func WithApplication(app *tview.Application) Option {
	return func(v *View) {
		v.app = app
	}
}

// New собирает интерфейс и оркестратор попытки для квиза.
func New(api client.AttemptAPI, quiz models.Quiz, opts ...Option) *View {
	v := &View{
		log:     slog.Default(),
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.app == nil {
		v.app = tview.NewApplication()
	}
	v.log = v.log.With("session_id", v.session, "quiz_id", quiz.ID)

	v.screen = fullscreen.NewSwitch()
	sender := notify.Multi{
		statusSender{show: v.showStatus},
		notify.NewLogSender(v.log),
	}
	v.orch = attempt.New(api, quiz,
		attempt.WithNotifier(sender),
		attempt.WithLogger(v.log),
		attempt.WithScreen(v.screen),
	)

	v.build()
	v.orch.OnChange(v.onChange)

	return v
}

func (v *View) build() {
	v.header = tview.NewTextView().SetDynamicColors(true)
	v.info = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	v.prompt = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	v.score = tview.NewTextView().SetDynamicColors(true)
	v.status = tview.NewTextView().SetDynamicColors(true)
	v.help = tview.NewTextView().SetDynamicColors(true).SetTextColor(tcell.ColorGray)

	v.info.SetBorder(true).SetTitle(" " + attempt.StepInfo.Title() + " ")

	v.input = tview.NewFlex().SetDirection(tview.FlexRow)
	answer := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.prompt, 0, 1, false).
		AddItem(v.input, 0, 2, true)
	answer.SetBorder(true).SetTitle(" " + attempt.StepAnswer.Title() + " ")

	v.summary = tview.NewTable().SetBorders(true)
	summary := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.score, 1, 0, false).
		AddItem(v.summary, 0, 1, true)
	summary.SetBorder(true).SetTitle(" " + attempt.StepSummary.Title() + " ")

	paused := tview.NewModal().SetText(pausedText)

	v.pages = tview.NewPages().
		AddPage(pageInfo, v.info, true, true).
		AddPage(pageAnswer, answer, true, false).
		AddPage(pageSummary, summary, true, false).
		AddPage(pagePaused, paused, true, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(v.pages, 0, 1, true).
		AddItem(v.status, 1, 0, false).
		AddItem(v.help, 1, 0, false)

	v.app.SetRoot(v.root, true)
	v.app.SetInputCapture(v.captureInput)
}

// Run показывает интерфейс до выхода пользователя или отмены ctx и
// возвращает итог попытки, если он был получен.
func (v *View) Run(ctx context.Context) (*models.AttemptResult, error) {
	v.ctx = ctx
	stop := context.AfterFunc(ctx, v.app.Stop)
	defer stop()

	v.log.Info("attempt view started")
	v.render(v.orch.Snapshot())

	err := v.app.Run()

	v.orch.Close()
	v.orch.Wait()
	v.log.Info("attempt view closed")

	if err != nil {
		return nil, err
	}
	return v.result.Load(), nil
}

// onChange вызывается оркестратором из любой горутины.
func (v *View) onChange(s attempt.State) {
	if s.Result != nil {
		v.result.Store(s.Result)
	}
	v.latest.Store(&s)

	go v.app.QueueUpdateDraw(func() {
		if latest := v.latest.Load(); latest != nil {
			v.render(*latest)
		}
	})
}

func (v *View) showStatus(n notify.Notification) {
	go v.app.QueueUpdateDraw(func() {
		v.status.SetText(statusText(n))
	})
}

func (v *View) captureInput(ev *tcell.EventKey) *tcell.EventKey {
	if keys := pasteKeys(ev); keys != nil {
		tap(v.orch.Keys(), keys)
	}

	s := v.orch.Snapshot()

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		v.app.Stop()
		return nil
	case tcell.KeyEsc:
		if s.InProgress && s.FullScreen {
			v.screen.Set(false)
			return nil
		}
		return ev
	case tcell.KeyCtrlF:
		v.report(v.orch.Resume())
		return nil
	case tcell.KeyCtrlB:
		v.report(v.orch.Back())
		return nil
	case tcell.KeyCtrlE:
		v.report(v.orch.Submit())
		return nil
	case tcell.KeyCtrlN:
		v.advance(s)
		return nil
	}

	return ev
}

// advance выполняет основное действие шага: Next, Start или Confirm.
func (v *View) advance(s attempt.State) {
	switch {
	case s.CanNext():
		v.report(v.orch.Next())
	case s.CanStart():
		go func() {
			err := v.orch.Start(v.ctx)
			if err != nil && !errors.Is(err, attempt.ErrClosed) {
				v.log.Debug("start attempt", "err", err)
			}
		}()
	case s.InProgress && s.FullScreen:
		if err := v.selectText(s); err != nil {
			v.showStatus(notify.Notification{Level: notify.LevelError, Title: "Answer", Message: err.Error()})
			return
		}
		v.report(v.orch.Confirm())
	}
}

// selectText выбирает ответ из текстового поля. Для mcq ответ выбирается
// в списке.
func (v *View) selectText(s attempt.State) error {
	if v.rendered != (questionKey{attemptID: s.AttemptID, questionID: s.Question.ID}) {
		return errQuestionNotShown
	}

	switch s.Question.Type {
	case models.QuestionTypeShort:
		return v.orch.Select(models.TextValue(v.shortText.GetText()))
	case models.QuestionTypeCode:
		return v.orch.Select(models.TextValue(v.codeText.GetText()))
	default:
		return nil
	}
}

func (v *View) report(err error) {
	if err == nil {
		return
	}
	v.log.Debug("action rejected", "err", err)
	v.status.SetText(statusText(notify.Notification{Level: notify.LevelError, Title: "Action", Message: err.Error()}))
}

// render перерисовывает интерфейс по снимку состояния.
func (v *View) render(s attempt.State) {
	v.header.SetText(headerText(s))
	v.help.SetText(helpText(s))

	switch s.Step {
	case attempt.StepInfo:
		v.info.SetText(infoText(s))
		v.pages.SwitchToPage(pageInfo)
	case attempt.StepAnswer:
		v.renderAnswer(s)
		v.pages.SwitchToPage(pageAnswer)
	case attempt.StepSummary:
		v.renderSummary(s)
		v.pages.SwitchToPage(pageSummary)
	}

	if s.InProgress && !s.Submitting && !s.FullScreen {
		v.pages.ShowPage(pagePaused)
	}

	chrome := 1
	if s.InProgress && s.FullScreen {
		chrome = 0
	}
	v.root.ResizeItem(v.status, chrome, 0)
	v.root.ResizeItem(v.help, chrome, 0)
}

func (v *View) renderAnswer(s attempt.State) {
	if !s.InProgress || !s.HasQuestion {
		v.prompt.SetText(waitingText(s))
		v.input.Clear()
		v.rendered = questionKey{}
		return
	}

	v.prompt.SetText(promptText(s))

	key := questionKey{attemptID: s.AttemptID, questionID: s.Question.ID}
	if key != v.rendered {
		v.rendered = key
		v.buildInput(s.Question)
	}

	if v.options != nil && s.Question.Type == models.QuestionTypeMCQ {
		for i := range s.Question.Options {
			v.options.SetItemText(i, optionText(s.Question, i, s.Selected), "")
		}
	}
}

// buildInput создает поле ввода для типа вопроса.
func (v *View) buildInput(q models.Question) {
	v.input.Clear()
	v.options, v.shortText, v.codeText = nil, nil, nil

	var focus tview.Primitive
	switch q.Type {
	case models.QuestionTypeMCQ:
		v.options = tview.NewList().ShowSecondaryText(false)
		for i := range q.Options {
			idx := i
			v.options.AddItem(optionText(q, idx, nil), "", 0, func() {
				v.report(v.orch.Select(models.IndexValue(idx)))
			})
		}
		focus = v.options
	case models.QuestionTypeShort:
		v.shortText = tview.NewInputField().SetLabel("Answer: ")
		focus = v.shortText
	default:
		v.codeText = tview.NewTextArea().SetPlaceholder("Write your code here")
		focus = v.codeText
	}

	v.input.AddItem(focus, 0, 1, true)
	v.app.SetFocus(focus)
}

func (v *View) renderSummary(s attempt.State) {
	v.score.SetText(scoreText(s))
	v.summary.Clear()

	for r, row := range summaryRows(s) {
		for c, text := range row {
			cell := tview.NewTableCell(tview.Escape(text)).SetSelectable(false)
			switch {
			case r == 0:
				cell.SetAttributes(tcell.AttrBold)
			case c == len(row)-1 && text == resultCorrect:
				cell.SetTextColor(tcell.ColorGreen)
			case c == len(row)-1 && text == resultIncorrect:
				cell.SetTextColor(tcell.ColorRed)
			}
			if c == 1 {
				cell.SetExpansion(1)
			}
			v.summary.SetCell(r, c, cell)
		}
	}
}
