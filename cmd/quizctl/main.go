package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizctl/internal/auth"
	"github.com/letsssgooo/quizctl/internal/cli"
	"github.com/letsssgooo/quizctl/internal/client"
	"github.com/letsssgooo/quizctl/internal/config"
	"github.com/letsssgooo/quizctl/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("quizctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	config.RegisterFlags(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	args := fs.Args()
	// интерфейс попытки занимает терминал, логи туда писать нельзя
	interactive := len(args) > 0 && args[0] == "take"

	log, closeLog, err := cfg.Log.NewLogger(interactive)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(log)

	tokens := storage.NewFileStorage(cfg.Auth.TokenFile)
	api, err := client.NewHTTPClient(cfg.API.BaseURL, tokens,
		client.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		client.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to create api client", "err", err)
		return 2
	}

	app := cli.New(api, auth.NewTokenAuth(tokens), cli.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		log.Debug("command failed", "err", err)
		return 1
	}

	return 0
}
