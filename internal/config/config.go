// Package config собирает настройки из флагов, переменных окружения
// QUIZCTL_* и файла config.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/letsssgooo/quizctl/internal/client"
)

// EnvPrefix - префикс переменных окружения.
const EnvPrefix = "QUIZCTL"

// Config - настройки quizctl и quizmock.
type Config struct {
	API  APIConfig  `mapstructure:"api"`
	Auth AuthConfig `mapstructure:"auth"`
	Log  LogConfig  `mapstructure:"log"`
	Mock MockConfig `mapstructure:"mock"`
}

// APIConfig - настройки REST клиента.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig - где хранится токен доступа.
type AuthConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

// LogConfig - настройки логирования.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// MockConfig - настройки эталонного бэкенда.
type MockConfig struct {
	Addr           string   `mapstructure:"addr"`
	Token          string   `mapstructure:"token"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// flagKeys связывает флаги с ключами конфигурации.
var flagKeys = map[string]string{
	"base-url":        "api.base_url",
	"timeout":         "api.timeout",
	"token-file":      "auth.token_file",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"addr":            "mock.addr",
	"mock-token":      "mock.token",
	"allowed-origins": "mock.allowed_origins",
}

// RegisterFlags добавляет в fs флаги, которые понимает Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to config file")
	fs.String("base-url", client.DefaultBaseURL, "quiz API base url")
	fs.Duration("timeout", client.DefaultTimeout, "timeout of one API request")
	fs.String("token-file", DefaultTokenFile(), "file with the access token")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-file", "", "log file, stderr if empty")
}

// RegisterMockFlags добавляет флаги эталонного бэкенда.
func RegisterMockFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":4000", "listen address")
	fs.String("mock-token", "", "bearer token required by the backend, empty disables auth")
	fs.StringSlice("allowed-origins", nil, "CORS origins allowed to call the backend")
}

// DefaultTokenFile возвращает путь к файлу токена в каталоге настроек пользователя.
func DefaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".quizctl", "token")
	}
	return filepath.Join(dir, "quizctl", "token")
}

// Load читает настройки. Приоритет: флаги, окружение, файл, значения по умолчанию.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", client.DefaultBaseURL)
	v.SetDefault("api.timeout", client.DefaultTimeout)
	v.SetDefault("auth.token_file", DefaultTokenFile())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("mock.addr", ":4000")
	v.SetDefault("mock.token", "")
	v.SetDefault("mock.allowed_origins", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "quizctl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseLevel переводит имя уровня в slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}
