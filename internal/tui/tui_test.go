package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizctl/internal/attempt"
	"github.com/letsssgooo/quizctl/internal/attempt/keylogger"
	"github.com/letsssgooo/quizctl/internal/client"
	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/mockapi"
	"github.com/letsssgooo/quizctl/internal/notify"
	"github.com/letsssgooo/quizctl/internal/storage"
)

func ptr(v models.AnswerValue) *models.AnswerValue {
	return &v
}

func testQuiz() models.Quiz {
	return models.Quiz{
		ID:               1,
		Title:            "Go basics",
		Description:      "Warm-up",
		TimeLimitSeconds: 3660,
		Questions: []models.Question{
			{ID: 10, Type: models.QuestionTypeMCQ, Prompt: "Pick B", Options: []string{"A", "B"}},
			{ID: 11, Type: models.QuestionTypeShort, Prompt: "Zero pointer?"},
		},
	}
}

func TestHeaderText(t *testing.T) {
	s := attempt.State{Step: attempt.StepAnswer, Quiz: testQuiz(), Countdown: "00:14:59"}

	header := headerText(s)
	assert.Contains(t, header, "[yellow::b](2) Progress[-::-]")
	assert.NotContains(t, header, "Time left")

	s.InProgress = true
	assert.Contains(t, headerText(s), "Time left: 00:14:59")
}

func TestInfoText(t *testing.T) {
	text := infoText(attempt.State{Quiz: testQuiz()})

	assert.Contains(t, text, "Time limit: 1h 1m")
	assert.Contains(t, text, "Questions: 2")
}

func TestWaitingText(t *testing.T) {
	s := attempt.State{Step: attempt.StepAnswer, Quiz: testQuiz()}
	assert.Contains(t, waitingText(s), "answer 2 questions")

	s.InProgress = true
	s.Position = "No questions"
	assert.Equal(t, "No questions", waitingText(s))
}

func TestView_EmptyQuizShowsNoQuestions(t *testing.T) {
	quiz := testQuiz()
	quiz.Questions = nil
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := New(nil, quiz, WithLogger(discard), WithApplication(tview.NewApplication()))

	v.render(attempt.State{
		Step:       attempt.StepAnswer,
		Quiz:       quiz,
		InProgress: true,
		FullScreen: true,
		Position:   "No questions",
	})

	assert.Equal(t, pageAnswer, frontPage(v))
	assert.Equal(t, "No questions", strings.TrimSpace(v.prompt.GetText(true)))
	assert.Equal(t, 0, v.input.GetItemCount())
}

func TestOptionText(t *testing.T) {
	q := testQuiz().Questions[0]

	assert.Equal(t, "[ ] A. A", optionText(q, 0, nil))
	assert.Equal(t, "[x] B. B", optionText(q, 1, ptr(models.IndexValue(1))))
	assert.Equal(t, "[ ] A. A", optionText(q, 0, ptr(models.IndexValue(1))))
}

func TestSummaryRows(t *testing.T) {
	s := attempt.State{
		Step: attempt.StepSummary,
		Quiz: testQuiz(),
		Result: &models.AttemptResult{
			Score: 1,
			Details: []models.ResultDetail{
				{QuestionID: 10, Correct: true, Expected: "B"},
				{QuestionID: 11, Correct: false, Expected: "nil"},
			},
		},
	}

	rows := summaryRows(s)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Pick B", "B", resultCorrect}, rows[1])
	assert.Equal(t, []string{"2", "Zero pointer?", "nil", resultIncorrect}, rows[2])
	assert.Equal(t, "[::b]Score: 1/2[::-]", scoreText(s))

	s.Result = nil
	rows = summaryRows(s)
	assert.Equal(t, []string{"1", "Pick B", noCorrectAnswer, resultNoResult}, rows[1])
	assert.Equal(t, "[::b]Score: -/2[::-]", scoreText(s))
}

func TestHelpText(t *testing.T) {
	assert.Contains(t, helpText(attempt.State{Step: attempt.StepInfo}), "Ctrl+N next")
	assert.Contains(t, helpText(attempt.State{Step: attempt.StepAnswer}), "Ctrl+N start")
	assert.Contains(t, helpText(attempt.State{Step: attempt.StepAnswer, InProgress: true, FullScreen: true}), "Esc")
	assert.Contains(t, helpText(attempt.State{Step: attempt.StepAnswer, InProgress: true}), "Ctrl+F")
	assert.Contains(t, helpText(attempt.State{Step: attempt.StepSummary}), "close")
}

func TestPasteKeys(t *testing.T) {
	testCases := []struct {
		name string
		ev   *tcell.EventKey
		want []string
	}{
		{name: "ctrl+v", ev: tcell.NewEventKey(tcell.KeyCtrlV, 0, tcell.ModCtrl), want: []string{keylogger.KeyControl, "v"}},
		{name: "alt+v", ev: tcell.NewEventKey(tcell.KeyRune, 'v', tcell.ModAlt), want: []string{keylogger.KeyMeta, "v"}},
		{name: "meta+V", ev: tcell.NewEventKey(tcell.KeyRune, 'V', tcell.ModMeta), want: []string{keylogger.KeyMeta, "v"}},
		{name: "plain v", ev: tcell.NewEventKey(tcell.KeyRune, 'v', tcell.ModNone)},
		{name: "enter", ev: tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pasteKeys(tc.ev))
		})
	}
}

func TestTap(t *testing.T) {
	m := keylogger.New()
	var events []string
	m.Subscribe(func(e string) { events = append(events, e) })

	tap(m, []string{keylogger.KeyControl, "v"})
	tap(m, []string{keylogger.KeyControl, "v"})

	assert.Equal(t, []string{"Ctrl + v pressed!", "Ctrl + v pressed!"}, events)
	assert.Empty(t, m.Held())
}

func TestStatusSender(t *testing.T) {
	var got []notify.Notification
	s := statusSender{show: func(n notify.Notification) { got = append(got, n) }}

	s.Success("Submit Attempt", "done")
	s.Error(notify.TitleStartAttempt, errors.New("boom"))

	require.Len(t, got, 2)
	assert.Equal(t, "[green]Submit Attempt:[-] done", statusText(got[0]))
	assert.Equal(t, notify.FallbackMessage, got[1].Message)
	assert.Equal(t, "[red]Start Attempt:[-] "+notify.FallbackMessage, statusText(got[1]))
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModCtrl)
}

func frontPage(v *View) string {
	name, _ := v.pages.GetFrontPage()
	return name
}

func TestView_AttemptAgainstBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine := mockapi.NewEngine()
	srv := httptest.NewServer(mockapi.NewServer(engine, mockapi.WithLogger(discard)).Handler())
	t.Cleanup(srv.Close)

	created := engine.CreateQuiz(models.QuizInput{Title: "Go basics", Description: "Warm-up", TimeLimitSeconds: 900})
	_, err := engine.CreateQuestion(created.ID, models.QuestionInput{
		Type:          models.QuestionTypeMCQ,
		Prompt:        "Pick B",
		Options:       []string{"A", "B"},
		CorrectAnswer: ptr(models.IndexValue(1)),
	})
	require.NoError(t, err)
	_, err = engine.CreateQuestion(created.ID, models.QuestionInput{
		Type:          models.QuestionTypeShort,
		Prompt:        "Zero value of a pointer?",
		CorrectAnswer: ptr(models.TextValue("nil")),
	})
	require.NoError(t, err)

	quiz, err := engine.GetQuiz(created.ID)
	require.NoError(t, err)

	api, err := client.NewHTTPClient(srv.URL, storage.NewMemoryStorage(""), client.WithLogger(discard))
	require.NoError(t, err)

	v := New(api, quiz, WithLogger(discard), WithApplication(tview.NewApplication()))
	v.ctx = context.Background()
	t.Cleanup(func() {
		v.orch.Close()
		v.orch.Wait()
	})

	v.render(v.orch.Snapshot())
	assert.Equal(t, pageInfo, frontPage(v))

	assert.Nil(t, v.captureInput(key(tcell.KeyCtrlN)))
	assert.Equal(t, attempt.StepAnswer, v.orch.Snapshot().Step)

	v.captureInput(key(tcell.KeyCtrlB))
	assert.Equal(t, attempt.StepInfo, v.orch.Snapshot().Step)
	v.captureInput(key(tcell.KeyCtrlN))

	v.captureInput(key(tcell.KeyCtrlN))
	require.Eventually(t, func() bool { return v.orch.Snapshot().InProgress }, time.Second, 10*time.Millisecond)

	s := v.orch.Snapshot()
	v.render(s)
	assert.Equal(t, pageAnswer, frontPage(v))
	require.NotNil(t, v.options)

	// выбор варианта B в списке
	handler := v.options.InputHandler()
	handler(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), func(tview.Primitive) {})
	handler(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	require.NotNil(t, v.orch.Snapshot().Selected)

	v.captureInput(tcell.NewEventKey(tcell.KeyCtrlV, 0, tcell.ModCtrl))

	v.captureInput(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	s = v.orch.Snapshot()
	assert.False(t, s.FullScreen)
	v.render(s)
	assert.Equal(t, pagePaused, frontPage(v))

	v.captureInput(key(tcell.KeyCtrlF))
	assert.True(t, v.orch.Snapshot().FullScreen)

	v.captureInput(key(tcell.KeyCtrlN))
	s = v.orch.Snapshot()
	require.Equal(t, 1, s.QuestionIndex)
	v.render(s)
	require.NotNil(t, v.shortText)

	v.shortText.SetText("  ")
	v.captureInput(key(tcell.KeyCtrlN))
	assert.Equal(t, 1, v.orch.Snapshot().QuestionIndex)

	v.shortText.SetText("nil")
	v.captureInput(key(tcell.KeyCtrlN))

	require.Eventually(t, func() bool { return v.orch.Snapshot().Step == attempt.StepSummary }, time.Second, 10*time.Millisecond)
	v.orch.Wait()

	s = v.orch.Snapshot()
	v.render(s)
	assert.Equal(t, pageSummary, frontPage(v))
	assert.Equal(t, "[::b]Score: 2/2[::-]", scoreText(s))
	assert.Equal(t, 3, v.summary.GetRowCount())
	assert.Equal(t, s.Result, v.result.Load())

	var events []string
	for _, e := range engine.Events(s.AttemptID) {
		events = append(events, e.Event)
	}
	assert.Contains(t, events, "Ctrl + v pressed!")

	var exited bool
	for _, e := range events {
		exited = exited || strings.HasPrefix(e, "Exit full-screen mode at ")
	}
	assert.True(t, exited)
}
