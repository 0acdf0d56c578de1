package auth

import (
	"fmt"
	"strings"
	"unicode"
)

const bearer = "Bearer"

// ParseToken валидирует введенный токен и отдает его без префикса Bearer
func ParseToken(message string) (string, error) {
	message = strings.TrimSpace(message)
	if len(message) >= len(bearer) && strings.EqualFold(message[:len(bearer)], bearer) {
		rest := message[len(bearer):]
		// слово bearer, за которым пробел или конец строки
		if rest == "" || unicode.IsSpace(rune(rest[0])) {
			message = strings.TrimSpace(rest)
		}
	}

	if message == "" {
		return "", fmt.Errorf("%w, token is empty", ErrValidation)
	}

	if len(strings.Fields(message)) != 1 {
		return "", fmt.Errorf("%w, token must not contain spaces", ErrValidation)
	}

	for _, r := range message {
		if unicode.IsControl(r) || r > unicode.MaxASCII {
			return "", fmt.Errorf("%w, token contains invalid characters", ErrValidation)
		}
	}

	return message, nil
}
