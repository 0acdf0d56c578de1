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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizctl/internal/config"
	"github.com/letsssgooo/quizctl/internal/mockapi"
)

const shutdownTimeout = 5 * time.Second

func main() {
	fs := pflag.NewFlagSet("quizmock", pflag.ExitOnError)
	config.RegisterFlags(fs)
	config.RegisterMockFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, closeLog, err := cfg.Log.NewLogger(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(log)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	api := mockapi.NewServer(mockapi.NewEngine(),
		mockapi.WithToken(cfg.Mock.Token),
		mockapi.WithAllowedOrigins(cfg.Mock.AllowedOrigins),
		mockapi.WithLogger(log),
	)

	srv := &http.Server{
		Addr:              cfg.Mock.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("quiz mock backend is starting", "addr", srv.Addr, "auth", cfg.Mock.Token != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen and serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down quiz mock backend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
