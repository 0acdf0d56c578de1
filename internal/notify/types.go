package notify

// Sender определяет интерфейс для показа уведомлений пользователю.
type Sender interface {
	// Success показывает уведомление об успешной операции.
	Success(title, message string)

	// Error показывает уведомление об ошибке операции.
	Error(title string, err error)
}

// Level - тип уведомления.
type Level string

// Типы уведомлений
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Заголовки уведомлений попытки
const (
	TitleStartAttempt  = "Start Attempt"
	TitleSubmitAnswer  = "Submit Question Answer"
	TitleSubmitAttempt = "Submit Attempt"
	TitleRecordEvent   = "Record Event"
)

// FallbackMessage показывается, если в ошибке нет сообщения бэкенда.
const FallbackMessage = "Something went wrong, please see logs for more details"

// Notification - одно показанное уведомление.
type Notification struct {
	Level   Level
	Title   string
	Message string
}
