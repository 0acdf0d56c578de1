// Package attempt проводит пользователя через попытку прохождения квиза:
// информация, ответы на вопросы, итоги.
package attempt

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/letsssgooo/quizctl/internal/attempt/collector"
	"github.com/letsssgooo/quizctl/internal/attempt/countdown"
	"github.com/letsssgooo/quizctl/internal/attempt/fullscreen"
	"github.com/letsssgooo/quizctl/internal/attempt/keylogger"
	"github.com/letsssgooo/quizctl/internal/client"
	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/notify"
)

// Orchestrator управляет шагами попытки и связывает таймер, монитор клавиш,
// полноэкранный режим и сборщик ответов с API.
type Orchestrator struct {
	api      client.AttemptAPI
	notifier notify.Sender
	log      *slog.Logger
	now      func() time.Time

	quiz    models.Quiz
	timer   *countdown.Countdown
	keys    *keylogger.Monitor
	screen  fullscreen.Controller
	answers *collector.Collector

	tickerFactory countdown.TickerFactory

	step       Step
	attemptID  int64
	startedAt  time.Time
	starting   bool
	inProgress bool
	submitting bool
	finished   bool
	result     *models.AttemptResult

	// gen увеличивается при Close, завершения старых вызовов отбрасываются
	gen         atomic.Uint64
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe []func()
	observers   []func(State)
	answering   sync.WaitGroup
	wg          sync.WaitGroup
	mu          sync.Mutex
}

// Option настраивает Orchestrator.
type Option func(o *Orchestrator)

// WithNotifier задает получателя уведомлений.
func WithNotifier(n notify.Sender) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithLogger задает логгер.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithScreen задает контроллер полноэкранного режима.
func WithScreen(screen fullscreen.Controller) Option {
	return func(o *Orchestrator) {
		o.screen = screen
	}
}

// WithKeyMonitor задает монитор клавиш.
func WithKeyMonitor(keys *keylogger.Monitor) Option {
	return func(o *Orchestrator) {
		o.keys = keys
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithTickerFactory подменяет источник тиков таймера.
func WithTickerFactory(f countdown.TickerFactory) Option {
	return func(o *Orchestrator) {
		o.tickerFactory = f
	}
}

// New создает Orchestrator для квиза. Порядок вопросов фиксируется
// по их позиции.
func New(api client.AttemptAPI, quiz models.Quiz, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:           api,
		notifier:      notify.NewLogSender(nil),
		log:           slog.Default(),
		now:           time.Now,
		quiz:          quiz,
		tickerFactory: countdown.NewTimeTicker,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.screen == nil {
		o.screen = fullscreen.NewSwitch()
	}
	if o.keys == nil {
		o.keys = keylogger.New()
	}

	questions := append([]models.Question(nil), quiz.Questions...)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
	o.quiz.Questions = questions

	o.answers = collector.New(questions,
		collector.OnAnswer(o.sendAnswer),
		collector.OnComplete(func(map[int64]models.AnswerValue) { o.submit() }),
	)
	o.timer = countdown.New(
		countdown.OnExpire(o.expire),
		countdown.OnTick(func(int) { o.changed() }),
		countdown.WithTickerFactory(o.tickerFactory),
	)

	o.ctx, o.cancel = context.WithCancel(context.Background())

	return o
}

// OnChange добавляет наблюдателя, которому передается снимок после
// каждого изменения состояния.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	o.observers = append(o.observers, fn)
	o.mu.Unlock()
}

// Keys возвращает монитор клавиш попытки.
func (o *Orchestrator) Keys() *keylogger.Monitor {
	return o.keys
}

// Screen возвращает контроллер полноэкранного режима.
func (o *Orchestrator) Screen() fullscreen.Controller {
	return o.screen
}

// Snapshot возвращает текущее состояние.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() State {
	remaining := o.timer.Remaining()
	state := State{
		Step:       o.step,
		Quiz:       o.quiz,
		AttemptID:  o.attemptID,
		StartedAt:  o.startedAt,
		Starting:   o.starting,
		InProgress: o.inProgress,
		Submitting: o.submitting,
		Finished:   o.finished,
		Remaining:  remaining,
		Countdown:  countdown.Format(remaining),
		FullScreen: o.screen.Active(),
		Position:   o.answers.Position(),
		CanConfirm: o.answers.CanConfirm(),
		Result:     o.result,
	}

	state.Question, state.QuestionIndex, state.HasQuestion = o.answers.Current()
	if v, ok := o.answers.Selected(); ok {
		state.Selected = &v
	}

	return state
}

func (o *Orchestrator) changed() {
	o.mu.Lock()
	observers := slices.Clone(o.observers)
	state := o.snapshotLocked()
	o.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

// Next переводит с шага информации на шаг ответов.
func (o *Orchestrator) Next() error {
	o.mu.Lock()
	if o.step != StepInfo {
		o.mu.Unlock()
		return ErrNextDisabled
	}
	o.step = StepAnswer
	o.mu.Unlock()

	o.changed()
	return nil
}

// Back возвращает с шага ответов на шаг информации, пока попытка не начата.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	switch {
	case o.step != StepAnswer:
		o.mu.Unlock()
		return ErrBackDisabled
	case o.starting:
		o.mu.Unlock()
		return ErrStartPending
	case o.inProgress:
		o.mu.Unlock()
		return ErrAttemptActive
	}
	o.step = StepInfo
	o.mu.Unlock()

	o.changed()
	return nil
}

// Start начинает попытку. Пока запрос выполняется, повторный вызов
// возвращает ErrStartPending.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	switch {
	case o.step != StepAnswer:
		o.mu.Unlock()
		return ErrNotAnswerStep
	case o.starting:
		o.mu.Unlock()
		return ErrStartPending
	case o.inProgress:
		o.mu.Unlock()
		return ErrAttemptActive
	case o.finished:
		o.mu.Unlock()
		return ErrAttemptFinished
	}
	o.starting = true
	gen := o.gen.Load()
	reqCtx, cancel := o.requestContextLocked(ctx)
	o.mu.Unlock()
	defer cancel()

	o.changed()

	attempt, err := o.api.StartAttempt(reqCtx, o.quiz.ID)

	o.mu.Lock()
	if gen != o.gen.Load() {
		o.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		o.starting = false
		o.mu.Unlock()
		o.notifier.Error(notify.TitleStartAttempt, err)
		o.log.Error("failed to start attempt", "quiz_id", o.quiz.ID, "err", err)
		o.changed()
		return fmt.Errorf("failed to start attempt: %w", err)
	}

	o.attemptID = attempt.ID
	o.startedAt = attempt.StartedAt
	o.mu.Unlock()

	o.recordEvent(fmt.Sprintf("Started attempt id: %d at %s", attempt.ID, attempt.StartedAt.Format(time.RFC3339)))

	// подписки включаются до публикации inProgress, чтобы submit их снял
	unsubscribe := []func(){
		o.keys.Subscribe(o.recordEvent),
		o.screen.Subscribe(o.onScreen),
	}
	if err = o.screen.Enter(); err != nil {
		o.log.Warn("failed to enter full-screen mode", "err", err)
	}

	o.mu.Lock()
	if gen != o.gen.Load() {
		o.mu.Unlock()
		for _, u := range unsubscribe {
			u()
		}
		if err = o.screen.Exit(); err != nil {
			o.log.Warn("failed to exit full-screen mode", "err", err)
		}
		return ErrClosed
	}
	o.starting = false
	o.inProgress = true
	o.unsubscribe = unsubscribe
	o.mu.Unlock()

	o.log.Info("attempt started", "quiz_id", o.quiz.ID, "attempt_id", attempt.ID)

	o.timer.Start(o.quiz.TimeLimitSeconds)

	// попытка могла завершиться до запуска таймера
	o.mu.Lock()
	stale := gen != o.gen.Load() || !o.inProgress || o.submitting
	o.mu.Unlock()
	if stale {
		o.timer.Stop()
	}

	o.changed()
	return nil
}

// Resume возвращает полноэкранный режим во время попытки.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	active := o.inProgress && !o.submitting
	o.mu.Unlock()

	if !active {
		return ErrNoActiveAttempt
	}

	if err := o.screen.Enter(); err != nil {
		return fmt.Errorf("failed to enter full-screen mode: %w", err)
	}
	return nil
}

// Select выбирает ответ на текущий вопрос.
func (o *Orchestrator) Select(v models.AnswerValue) error {
	if err := o.checkAnswering(); err != nil {
		return err
	}

	if err := o.answers.Select(v); err != nil {
		return err
	}

	o.changed()
	return nil
}

// Confirm подтверждает ответ на текущий вопрос. Ответ на последний вопрос
// отправляет попытку.
func (o *Orchestrator) Confirm() error {
	if err := o.checkAnswering(); err != nil {
		return err
	}

	if err := o.answers.Confirm(); err != nil {
		return err
	}

	o.changed()
	return nil
}

// Submit отправляет попытку досрочно.
func (o *Orchestrator) Submit() error {
	if err := o.checkAnswering(); err != nil {
		return err
	}

	o.submit()
	return nil
}

func (o *Orchestrator) checkAnswering() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.submitting:
		return ErrSubmitInProgress
	case !o.inProgress:
		return ErrNoActiveAttempt
	}
	return nil
}

func (o *Orchestrator) sendAnswer(questionID int64, v models.AnswerValue) {
	o.mu.Lock()
	attemptID := o.attemptID
	o.mu.Unlock()

	o.answering.Add(1)
	o.async(func(ctx context.Context, current func() bool) {
		defer o.answering.Done()

		err := o.api.AnswerQuestion(ctx, attemptID, models.AnswerRequest{QuestionID: questionID, Value: v})
		if err != nil && current() {
			o.notifier.Error(notify.TitleSubmitAnswer, err)
			o.log.Error("failed to submit answer",
				"attempt_id", attemptID,
				"question_id", questionID,
				"err", err,
			)
		}
	})
}

func (o *Orchestrator) expire() {
	o.mu.Lock()
	active := o.inProgress && !o.submitting
	o.mu.Unlock()

	if !active {
		return
	}

	o.recordEvent("Time limit reached at " + o.now().Format(EventTimeLayout))
	o.submit()
}

func (o *Orchestrator) onScreen(active bool) {
	if active {
		o.changed()
		return
	}

	o.keys.Reset()

	o.mu.Lock()
	report := o.inProgress && !o.submitting
	o.mu.Unlock()

	if report {
		o.recordEvent("Exit full-screen mode at " + o.now().Format(EventTimeLayout))
	}
	o.changed()
}

// submit завершает попытку. Шаг итогов наступает после ответа бэкенда,
// ошибка тоже завершает попытку локально.
func (o *Orchestrator) submit() {
	o.mu.Lock()
	if !o.inProgress || o.submitting {
		o.mu.Unlock()
		return
	}
	o.submitting = true
	attemptID := o.attemptID
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	o.timer.Stop()
	if err := o.screen.Exit(); err != nil {
		o.log.Warn("failed to exit full-screen mode", "err", err)
	}

	o.async(func(ctx context.Context, current func() bool) {
		// ответы должны дойти до бэкенда раньше завершения попытки
		o.answering.Wait()

		result, err := o.api.SubmitAttempt(ctx, attemptID)

		o.mu.Lock()
		if !current() {
			o.mu.Unlock()
			return
		}
		o.submitting = false
		o.inProgress = false
		o.finished = true
		o.step = StepSummary
		if err == nil {
			o.result = result
		}
		o.mu.Unlock()

		if err != nil {
			o.notifier.Error(notify.TitleSubmitAttempt, err)
			o.log.Error("failed to submit attempt", "attempt_id", attemptID, "err", err)
		} else {
			o.log.Info("attempt submitted", "attempt_id", attemptID, "score", result.Score)
		}
		o.changed()
	})

	o.recordEvent(fmt.Sprintf("Attempt id: %d submitted at %s", attemptID, o.now().Format(EventTimeLayout)))
	o.changed()
}

// recordEvent отправляет событие прокторинга для текущей попытки.
func (o *Orchestrator) recordEvent(event string) {
	o.mu.Lock()
	attemptID := o.attemptID
	o.mu.Unlock()

	if attemptID == 0 {
		return
	}

	o.async(func(ctx context.Context, current func() bool) {
		if err := o.api.RecordEvent(ctx, attemptID, event); err != nil && current() {
			o.notifier.Error(notify.TitleRecordEvent, err)
			o.log.Error("failed to record event", "attempt_id", attemptID, "event", event, "err", err)
		}
	})
}

// async выполняет вызов API в отдельной горутине. current сообщает,
// что с момента вызова не было Close.
func (o *Orchestrator) async(fn func(ctx context.Context, current func() bool)) {
	o.mu.Lock()
	gen := o.gen.Load()
	ctx := o.ctx
	o.wg.Add(1)
	o.mu.Unlock()

	current := func() bool {
		return gen == o.gen.Load()
	}

	go func() {
		defer o.wg.Done()
		fn(ctx, current)
	}()
}

func (o *Orchestrator) requestContextLocked(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(o.ctx)
	stop := context.AfterFunc(ctx, cancel)

	return reqCtx, func() {
		stop()
		cancel()
	}
}

// Wait ждет завершения всех отправленных вызовов API.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close отменяет незавершенные вызовы, останавливает таймер и мониторы
// и возвращает попытку на шаг информации.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.gen.Add(1)
	o.cancel()
	o.ctx, o.cancel = context.WithCancel(context.Background())
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.step = StepInfo
	o.attemptID = 0
	o.startedAt = time.Time{}
	o.starting = false
	o.inProgress = false
	o.submitting = false
	o.finished = false
	o.result = nil
	o.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	o.timer.Stop()
	o.answers.Reset()
	o.keys.Reset()
	if err := o.screen.Exit(); err != nil {
		o.log.Warn("failed to exit full-screen mode", "err", err)
	}

	o.changed()
}
