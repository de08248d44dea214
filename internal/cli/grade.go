package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"growth-hub-quiz/internal/app"
	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/infra/memory"
)

// NewGradeCmd grades an answer file against a catalog quiz offline.
func NewGradeCmd() *cobra.Command {
	var (
		catalogFile string
		quizID      string
		answersFile string
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a JSON answer set against a quiz without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCatalog(catalogFile)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(answersFile)
			if err != nil {
				return err
			}
			var answers map[string]json.RawMessage
			if err := json.Unmarshal(data, &answers); err != nil {
				return fmt.Errorf("decode answers: %w", err)
			}

			service := app.NewQuizService(
				memory.NewAttemptStore(),
				memory.NewQuizRepository(memory.NewCatalogLoader(c), 0),
				memory.NewProgressStore(0),
				app.NewBoard(),
			)
			report, err := service.Grade(cmd.Context(), quizID, answers)
			if err != nil && !errors.Is(err, domain.ErrDegenerateInput) {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(report); encErr != nil {
				return encErr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog JSON file (defaults to the built-in sample)")
	cmd.Flags().StringVar(&quizID, "quiz", "", `quiz to grade, e.g. "lesson:basic_anatomy:1" or "course:basic_anatomy"`)
	cmd.Flags().StringVar(&answersFile, "answers", "", "JSON object of answers keyed by question ID")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
