package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/quizctl/internal/auth"
)

func (a *App) login(ctx context.Context, args []string) error {
	var raw string
	switch len(args) {
	case 0:
		fmt.Fprint(a.out, "Token: ")
		scanner := bufio.NewScanner(a.in)
		if scanner.Scan() {
			raw = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	case 1:
		raw = args[0]
	default:
		return fmt.Errorf("%w: login takes at most one token", ErrUsage)
	}

	if err := a.auth.Login(ctx, raw); err != nil {
		if errors.Is(err, auth.ErrValidation) {
			fmt.Fprintf(a.out, "token: %s\n", err)
			return err
		}
		return a.failed(titleLogin, err)
	}

	a.notifier.Success(titleLogin, "Token saved")
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.failed(titleLogout, err)
	}

	a.notifier.Success(titleLogout, "Token removed")
	return nil
}

func (a *App) takeQuiz(ctx context.Context, args []string) error {
	id, err := oneID(args, "quiz id")
	if err != nil {
		return err
	}

	q, err := a.api.GetQuiz(ctx, id)
	if err != nil {
		return a.failed(titleTakeQuiz, err)
	}

	result, err := a.take(ctx, *q)
	if err != nil {
		return fmt.Errorf("failed to run attempt: %w", err)
	}

	if result == nil {
		fmt.Fprintln(a.out, "Attempt finished without a result")
		return nil
	}

	printResult(a.out, *q, result)
	return nil
}
