package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/letsssgooo/quizctl/internal/attempt"
	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/notify"
	"github.com/letsssgooo/quizctl/internal/quiz"
)

// Результат вопроса в таблице итогов
const (
	resultCorrect    = "Correct"
	resultIncorrect  = "Incorrect"
	resultNoResult   = "-"
	noCorrectAnswer  = "-"
	startPromptTitle = "Ready to start"
)

// headerText рисует шаги попытки с выделением текущего и таймер.
func headerText(s attempt.State) string {
	var b strings.Builder

	b.WriteString("[::b]" + tview.Escape(s.Quiz.Title) + "[::-]  ")
	for i, step := range attempt.Steps {
		if i > 0 {
			b.WriteString(" > ")
		}
		label := fmt.Sprintf("(%d) %s", i+1, step.Title())
		if step == s.Step {
			label = "[yellow::b]" + label + "[-::-]"
		}
		b.WriteString(label)
	}

	if s.InProgress {
		fmt.Fprintf(&b, "  [::b]Time left: %s[::-]", s.Countdown)
	}

	return b.String()
}

// infoText рисует шаг информации о квизе.
func infoText(s attempt.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[::b]%s[::-]\n\n", tview.Escape(s.Quiz.Title))
	if s.Quiz.Description != "" {
		b.WriteString(tview.Escape(s.Quiz.Description) + "\n\n")
	}
	fmt.Fprintf(&b, "Time limit: %s\n", quiz.SecondsToHoursAndMinutes(s.Quiz.TimeLimitSeconds))
	fmt.Fprintf(&b, "Questions: %d\n", s.Quiz.QuestionCount())

	return b.String()
}

// startText рисует шаг ответов до начала попытки.
func startText(s attempt.State) string {
	var b strings.Builder

	b.WriteString("[::b]" + startPromptTitle + "[::-]\n\n")
	fmt.Fprintf(&b, "You will have %s to answer %d questions.\n",
		quiz.SecondsToHoursAndMinutes(s.Quiz.TimeLimitSeconds), s.Quiz.QuestionCount())
	b.WriteString("The attempt runs in full-screen mode. Leaving it and pasting are recorded.\n")
	if s.Starting {
		b.WriteString("\nStarting attempt...")
	}

	return b.String()
}

// waitingText рисует шаг ответов, когда вопроса на экране нет.
func waitingText(s attempt.State) string {
	if s.InProgress {
		return s.Position
	}
	return startText(s)
}

// promptText рисует текущий вопрос.
func promptText(s attempt.State) string {
	if !s.HasQuestion {
		return s.Position
	}
	return fmt.Sprintf("[::d]%s[::-]\n\n%s", s.Position, tview.Escape(s.Question.Prompt))
}

// optionText рисует вариант ответа mcq с отметкой выбранного.
func optionText(q models.Question, idx int, selected *models.AnswerValue) string {
	mark := "[ ]"
	if selected != nil {
		if got, ok := selected.Index(); ok && got == idx {
			mark = "[x]"
		}
	}
	return fmt.Sprintf("%s %s. %s", mark, quiz.IndexToLetter(idx), q.Options[idx])
}

// summaryRows возвращает строки таблицы итогов: вопрос, правильный ответ, результат.
func summaryRows(s attempt.State) [][]string {
	rows := [][]string{{"#", "Question", "Correct answer", "Result"}}
	details := s.Result.DetailByQuestion()

	for i, q := range s.Quiz.Questions {
		expected, result := noCorrectAnswer, resultNoResult
		if d, ok := details[q.ID]; ok {
			if d.Expected != "" {
				expected = d.Expected
			}
			result = resultIncorrect
			if d.Correct {
				result = resultCorrect
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), q.Prompt, expected, result})
	}

	return rows
}

// scoreText рисует итоговый счет.
func scoreText(s attempt.State) string {
	if s.Submitting {
		return "Submitting attempt..."
	}
	return "[::b]Score: " + s.ScoreLine() + "[::-]"
}

// helpText рисует подсказку по клавишам для шага.
func helpText(s attempt.State) string {
	switch {
	case s.Step == attempt.StepInfo:
		return "Ctrl+N next  Ctrl+Q quit"
	case s.Step == attempt.StepAnswer && s.InProgress && !s.FullScreen:
		return "Ctrl+F return to full-screen  Ctrl+Q quit"
	case s.Step == attempt.StepAnswer && s.InProgress:
		return "Enter select  Ctrl+N confirm  Ctrl+E submit  Esc leave full-screen"
	case s.Step == attempt.StepAnswer:
		return "Ctrl+N start  Ctrl+B back  Ctrl+Q quit"
	default:
		return "Ctrl+Q close"
	}
}

// statusText рисует уведомление для строки статуса.
func statusText(n notify.Notification) string {
	color := "green"
	if n.Level == notify.LevelError {
		color = "red"
	}
	return fmt.Sprintf("[%s]%s:[-] %s", color, tview.Escape(n.Title), tview.Escape(n.Message))
}
