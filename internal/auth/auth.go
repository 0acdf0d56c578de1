package auth

import (
	"context"
	"fmt"

	"github.com/letsssgooo/quizctl/internal/storage"
)

type TokenAuth struct {
	tokens storage.TokenStore
}

var _ Authenticator = (*TokenAuth)(nil)

func NewTokenAuth(tokens storage.TokenStore) *TokenAuth {
	return &TokenAuth{tokens: tokens}
}

func (a *TokenAuth) Login(ctx context.Context, raw string) error {
	token, err := ParseToken(raw)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutAuth)
	defer cancel()

	if err = a.tokens.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (a *TokenAuth) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutAuth)
	defer cancel()

	if err := a.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (a *TokenAuth) LoggedIn(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutAuth)
	defer cancel()

	token, err := a.tokens.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}
