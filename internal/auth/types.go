package auth

import (
	"context"
	"errors"
	"time"
)

// Authenticator определяет интерфейс для работы с токеном доступа
type Authenticator interface {
	// Login проверяет токен и сохраняет его
	Login(ctx context.Context, raw string) error

	// Logout удаляет сохраненный токен
	Logout(ctx context.Context) error

	// LoggedIn сообщает, сохранен ли токен
	LoggedIn(ctx context.Context) (bool, error)
}

// Ошибки авторизации
var ErrValidation = errors.New("validation error")

// Таймаут
const timeoutAuth = 500 * time.Millisecond
