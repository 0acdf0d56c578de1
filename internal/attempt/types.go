package attempt

import (
	"errors"
	"time"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

// Step - шаг прохождения квиза.
type Step int

// Шаги прохождения
const (
	StepInfo Step = iota
	StepAnswer
	StepSummary
)

// Title возвращает заголовок шага.
func (s Step) Title() string {
	switch s {
	case StepInfo:
		return "Quiz Information"
	case StepAnswer:
		return "Progress"
	case StepSummary:
		return "Summary"
	default:
		return "Unknown"
	}
}

// Steps - шаги в порядке прохождения.
var Steps = []Step{StepInfo, StepAnswer, StepSummary}

// EventTimeLayout - формат времени в событиях прокторинга.
const EventTimeLayout = "2006-01-02 15:04:05"

// Ошибки попытки
var (
	ErrNextDisabled     = errors.New("next is available only on the information step")
	ErrBackDisabled     = errors.New("back is disabled")
	ErrNotAnswerStep    = errors.New("attempt can be started only on the progress step")
	ErrStartPending     = errors.New("attempt start is already pending")
	ErrAttemptActive    = errors.New("attempt is already in progress")
	ErrAttemptFinished  = errors.New("attempt is already finished")
	ErrNoActiveAttempt  = errors.New("no attempt in progress")
	ErrSubmitInProgress = errors.New("attempt is being submitted")
	ErrClosed           = errors.New("attempt was closed")
)

// State - снимок состояния попытки для отображения.
type State struct {
	Step Step
	Quiz models.Quiz

	AttemptID  int64
	StartedAt  time.Time
	Starting   bool
	InProgress bool
	Submitting bool
	Finished   bool

	Remaining  int
	Countdown  string
	FullScreen bool

	Question      models.Question
	QuestionIndex int
	HasQuestion   bool
	Position      string
	Selected      *models.AnswerValue
	CanConfirm    bool

	Result *models.AttemptResult
}

// CanNext сообщает, доступна ли кнопка Next.
func (s State) CanNext() bool {
	return s.Step == StepInfo
}

// CanBack сообщает, доступна ли кнопка Back.
func (s State) CanBack() bool {
	return s.Step == StepAnswer && !s.Starting && !s.InProgress
}

// CanStart сообщает, доступна ли кнопка Start.
func (s State) CanStart() bool {
	return s.Step == StepAnswer && !s.Starting && !s.InProgress && !s.Finished
}

// ScoreLine возвращает строку счета вида "2/3".
func (s State) ScoreLine() string {
	return s.Result.ScoreLine(s.Quiz.QuestionCount())
}
