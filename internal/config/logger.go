package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/letsssgooo/quizctl/internal/lib/slogcustom"
)

// NewLogger создает логгер по настройкам. Если задан файл, записи
// дописываются в него. quiet без файла отключает вывод, пока терминал
// занят интерфейсом.
func (c LogConfig) NewLogger(quiet bool) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	switch {
	case c.File != "":
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closeFn = f, f.Close
	case quiet:
		out = io.Discard
	}

	return slog.New(slogcustom.NewCustomHandler(out, level)), closeFn, nil
}
