package quiz

import (
	"strconv"
	"strings"
)

// Пресеты лимита времени для форм квиза.
const (
	PresetShort = 15 * 60
	PresetLong  = 45 * 60
)

// SecondsToHoursAndMinutes форматирует длительность как "1h 1m 1s".
// Нулевое и отрицательное значения дают "0m".
func SecondsToHoursAndMinutes(seconds int) string {
	if seconds <= 0 {
		return "0m"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	rest := seconds % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.Itoa(minutes)+"m")
	}
	if rest > 0 || len(parts) == 0 {
		parts = append(parts, strconv.Itoa(rest)+"s")
	}

	return strings.Join(parts, " ")
}

// AnswerLetters - буквы для вариантов ответа (A-F для до 6 вариантов).
var AnswerLetters = []string{"A", "B", "C", "D", "E", "F"}

// IndexToLetter преобразует индекс в букву (0=A, 1=B, ...).
func IndexToLetter(idx int) string {
	if idx >= 0 && idx < len(AnswerLetters) {
		return AnswerLetters[idx]
	}

	return strconv.Itoa(idx + 1)
}

// LetterToIndex преобразует букву в индекс (A=0, B=1, ...).
func LetterToIndex(letter string) (int, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for i, l := range AnswerLetters {
		if l == letter {
			return i, true
		}
	}

	return -1, false
}
