package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/quiz"
)

var heading = color.New(color.FgCyan, color.Bold)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printQuizList(out io.Writer, quizzes []models.Quiz) {
	heading.Fprintln(out, "Quizzes")
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes")
		return
	}

	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tTITLE\tTIME LIMIT\tPUBLISHED")
	for _, q := range quizzes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			q.ID, q.Title, quiz.SecondsToHoursAndMinutes(q.TimeLimitSeconds), yesNo(q.IsPublished))
	}
	_ = tw.Flush()
}

func printQuiz(out io.Writer, q *models.Quiz) {
	heading.Fprintf(out, "Quiz %d: %s\n", q.ID, q.Title)
	fmt.Fprintf(out, "Description: %s\n", q.Description)
	fmt.Fprintf(out, "Time limit: %s\n", quiz.SecondsToHoursAndMinutes(q.TimeLimitSeconds))
	fmt.Fprintf(out, "Published: %s\n", yesNo(q.IsPublished))

	if q.QuestionCount() == 0 {
		fmt.Fprintln(out, "No questions")
		return
	}
	printQuestions(out, q.Questions)
}

func printQuestions(out io.Writer, questions []models.Question) {
	tw := newTable(out)
	fmt.Fprintln(tw, "POS\tID\tTYPE\tPROMPT\tOPTIONS\tANSWER")
	for _, q := range questions {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			q.Position, q.ID, q.Type, q.Prompt, options(q), answer(q))
	}
	_ = tw.Flush()
}

func options(q models.Question) string {
	if len(q.Options) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(q.Options))
	for i, o := range q.Options {
		parts = append(parts, quiz.IndexToLetter(i)+") "+o)
	}
	return strings.Join(parts, " ")
}

// answer показывает правильный ответ: для mcq буквой и текстом варианта.
func answer(q models.Question) string {
	if q.CorrectAnswer == nil {
		return "-"
	}
	if text, ok := q.CorrectOption(); ok {
		idx, _ := q.CorrectAnswer.Index()
		return quiz.IndexToLetter(idx) + ") " + text
	}
	return q.Display(*q.CorrectAnswer)
}

func printResult(out io.Writer, q models.Quiz, result *models.AttemptResult) {
	heading.Fprintln(out, "Summary")

	details := result.DetailByQuestion()
	tw := newTable(out)
	fmt.Fprintln(tw, "#\tQUESTION\tCORRECT ANSWER\tRESULT")
	for i, question := range q.Questions {
		expected, res := "-", "-"
		if d, ok := details[question.ID]; ok {
			expected = d.Expected
			res = "Incorrect"
			if d.Correct {
				res = "Correct"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strconv.Itoa(i+1), question.Prompt, expected, res)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "Score: %s\n", result.ScoreLine(q.QuestionCount()))
}
