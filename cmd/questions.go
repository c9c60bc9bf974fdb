package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/quiz"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Work with question banks",
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a question bank and print a summary",
	Long:  "Validate a JSON question bank against its schema. Set quiz.bank to the file to offer it in the app.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		qs, err := quiz.ImportQuestions(f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		byTopic := make(map[string]int)
		for _, q := range qs {
			topic := q.Topic
			if topic == "" {
				topic = "(no topic)"
			}
			byTopic[topic]++
		}
		topics := make([]string, 0, len(byTopic))
		for t := range byTopic {
			topics = append(topics, t)
		}
		sort.Strings(topics)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d valid question(s) in %s\n", len(qs), args[0])
		for _, t := range topics {
			fmt.Fprintf(w, "  %-32s %d\n", t, byTopic[t])
		}
		return nil
	},
}

var questionsDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print the built-in demo quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return quiz.ExportQuestions(cmd.OutOrStdout(), quiz.DemoQuestions())
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), quiz.FormatAll(quiz.DemoQuestions()))
		return err
	},
}

func init() {
	questionsDemoCmd.Flags().Bool("json", false, "Print as an importable JSON bank")

	questionsCmd.AddCommand(questionsImportCmd)
	questionsCmd.AddCommand(questionsDemoCmd)
}
