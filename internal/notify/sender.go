package notify

import (
	"log/slog"
	"sync"

	"github.com/letsssgooo/quizctl/internal/client"
)

// Description возвращает текст уведомления для ошибки: сообщение бэкенда
// или FallbackMessage.
func Description(err error) string {
	if msg, ok := client.ErrorMessage(err); ok {
		return msg
	}
	return FallbackMessage
}

// LogSender пишет уведомления в slog.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender создает LogSender. nil означает slog.Default().
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

// Success пишет уведомление об успехе.
func (s *LogSender) Success(title, message string) {
	s.log.Info(title, "message", message)
}

// Error пишет уведомление об ошибке вместе с исходной ошибкой.
func (s *LogSender) Error(title string, err error) {
	s.log.Error(title, "message", Description(err), "err", err)
}

// Recorder запоминает уведомления. Используется в тестах и как буфер
// для терминального интерфейса.
type Recorder struct {
	notifications []Notification
	mu            sync.Mutex
}

// Success запоминает уведомление об успехе.
func (r *Recorder) Success(title, message string) {
	r.add(Notification{Level: LevelSuccess, Title: title, Message: message})
}

// Error запоминает уведомление об ошибке.
func (r *Recorder) Error(title string, err error) {
	r.add(Notification{Level: LevelError, Title: title, Message: Description(err)})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()
}

// All возвращает копию всех уведомлений.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notification(nil), r.notifications...)
}

// Titles возвращает заголовки уведомлений с уровнем level.
func (r *Recorder) Titles(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	titles := make([]string, 0)
	for _, n := range r.notifications {
		if n.Level == level {
			titles = append(titles, n.Title)
		}
	}
	return titles
}

// Multi рассылает уведомления всем получателям.
type Multi []Sender

// Success рассылает уведомление об успехе.
func (m Multi) Success(title, message string) {
	for _, s := range m {
		s.Success(title, message)
	}
}

// Error рассылает уведомление об ошибке.
func (m Multi) Error(title string, err error) {
	for _, s := range m {
		s.Error(title, err)
	}
}
