package tui

import (
	"github.com/letsssgooo/quizctl/internal/notify"
)

// statusSender показывает уведомления в строке статуса.
type statusSender struct {
	show func(n notify.Notification)
}

var _ notify.Sender = statusSender{}

func (s statusSender) Success(title, message string) {
	s.show(notify.Notification{Level: notify.LevelSuccess, Title: title, Message: message})
}

func (s statusSender) Error(title string, err error) {
	s.show(notify.Notification{Level: notify.LevelError, Title: title, Message: notify.Description(err)})
}
