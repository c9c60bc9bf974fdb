package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/app"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/screens/quizsetup"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Open the quiz setup screen",
	Long:  "Open the interactive app on the quiz setup screen, prefilled from the flags.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		rawDifficulty, _ := cmd.Flags().GetString("difficulty")
		rawLevel, _ := cmd.Flags().GetString("level")

		difficulty, err := quiz.ParseDifficulty(rawDifficulty)
		if err != nil {
			return err
		}
		level, err := quiz.ParseCertificateLevel(rawLevel)
		if err != nil {
			return err
		}

		return runApp(cmd, app.Options{Prefill: &quizsetup.Prefill{
			Topic:            topic,
			Difficulty:       difficulty,
			CertificateLevel: level,
			Count:            count,
		}})
	},
}

func init() {
	quizCmd.Flags().StringP("topic", "t", "", "Quiz topic, e.g. \"Foot Drill\"")
	quizCmd.Flags().IntP("count", "n", 0, "Number of questions (0 uses quiz.default_count)")
	quizCmd.Flags().StringP("difficulty", "d", "", "beginner, intermediate or advanced")
	quizCmd.Flags().StringP("level", "l", "", "Certificate level: A, B or C")
}
