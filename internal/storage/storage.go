package storage

import (
	"context"
	"errors"
)

// ErrEmptyToken возвращается при попытке сохранить пустой токен.
var ErrEmptyToken = errors.New("token is empty")

// TokenStore определяет интерфейс для хранения токена доступа на стороне клиента.
type TokenStore interface {
	// Token возвращает сохраненный токен. Пустая строка, если токена нет.
	Token(ctx context.Context) (string, error)

	// SaveToken сохраняет токен.
	SaveToken(ctx context.Context, token string) error

	// ClearToken удаляет токен.
	ClearToken(ctx context.Context) error
}
