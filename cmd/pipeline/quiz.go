package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
)

var (
	quizModel     string
	quizQuestions int
	quizTake      bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz <source>",
	Short: "Generate a multiple-choice quiz from a LaTeX summary or transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			out, doc, err := a.pipeline.GenerateQuiz(ctx, args[0], pipeline.QuizOptions{
				Model:     quizModel,
				Questions: quizQuestions,
			})
			if err != nil {
				return stageError(out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d questions): %s\n", doc.Title, doc.TotalQuestions, out.ArtifactKey)

			if !quizTake {
				return nil
			}
			res := takeQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), doc)
			fmt.Fprintf(cmd.OutOrStdout(), "\nScore: %d/%d (%.0f%%)\n", res.Correct, res.Total, res.Percent)
			if len(res.Missed) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Review questions: %v\n", res.Missed)
			}
			return nil
		})
	},
}

// takeQuiz asks every question on w and reads one answer letter per line from
// r. Blank or invalid lines leave the question unanswered.
func takeQuiz(r io.Reader, w io.Writer, doc *quiz.Document) quiz.Result {
	scanner := bufio.NewScanner(r)
	answers := make(map[int]quiz.Option, len(doc.Questions))

	for _, q := range doc.Questions {
		fmt.Fprintf(w, "\n%d. %s\n", q.ID, q.Prompt)
		for _, opt := range quiz.Options {
			fmt.Fprintf(w, "   %s) %s\n", opt, q.Options[opt])
		}
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}
		if ans := quiz.Option(strings.ToUpper(strings.TrimSpace(scanner.Text()))); ans.Valid() {
			answers[q.ID] = ans
			if ans != q.Correct {
				fmt.Fprintf(w, "   Answer: %s. %s\n", q.Correct, q.Explanation)
			}
		}
	}
	return quiz.Score(doc, answers)
}

func init() {
	quizCmd.Flags().StringVarP(&quizModel, "model", "m", "", "override llm.quiz_model")
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "n", 10, "number of questions")
	quizCmd.Flags().BoolVar(&quizTake, "take", false, "answer the quiz interactively and print a score")

	rootCmd.AddCommand(quizCmd)
}
