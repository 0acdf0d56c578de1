package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage хранит токен в файле с правами 0600.
type FileStorage struct {
	path string
}

// NewFileStorage создаёт FileStorage для файла path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path возвращает путь к файлу токена.
func (s *FileStorage) Path() string {
	return s.path
}

// Token читает токен из файла. Отсутствующий файл означает отсутствие токена.
func (s *FileStorage) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", s.path, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// SaveToken записывает токен в файл, создавая каталог при необходимости.
func (s *FileStorage) SaveToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == "" {
		return ErrEmptyToken
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.path, err)
	}

	return nil
}

// ClearToken удаляет файл токена.
func (s *FileStorage) ClearToken(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file %s: %w", s.path, err)
	}

	return nil
}
