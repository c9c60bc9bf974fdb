package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show study statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(svc *bootstrap.Services, t *progress.Tracker) error {
			r, err := t.Report(svc.Config.User)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printReport(cmd.OutOrStdout(), r)
			return nil
		})
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset study progress",
	Long:  "Reset study progress. By default statistics are cleared and preferences kept; --complete starts over from a fresh profile.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := progress.ResetPartial
		if complete, _ := cmd.Flags().GetBool("complete"); complete {
			kind = progress.ResetComplete
		}
		return withTracker(cmd, func(svc *bootstrap.Services, t *progress.Tracker) error {
			if err := t.Reset(svc.Config.User, kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress for %s reset (%s).\n", svc.Config.User, kind)
			return nil
		})
	},
}

var progressExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the full progress profile as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(svc *bootstrap.Services, t *progress.Tracker) error {
			if len(args) == 0 || args[0] == "-" {
				return t.Export(svc.Config.User, cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := t.Export(svc.Config.User, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Progress exported to", args[0])
			return nil
		})
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print the report as JSON")
	progressResetCmd.Flags().Bool("complete", false, "Discard preferences and achievements too")

	progressCmd.AddCommand(progressResetCmd)
	progressCmd.AddCommand(progressExportCmd)
}

func withTracker(cmd *cobra.Command, fn func(svc *bootstrap.Services, t *progress.Tracker) error) error {
	svc, err := openServices(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer svc.Close()
	if svc.Tracker == nil {
		return fmt.Errorf("progress tracking is unavailable; run `cadet features` for details")
	}
	return fn(svc, svc.Tracker)
}

func printReport(w io.Writer, r progress.Report) {
	s := r.Stats
	fmt.Fprintf(w, "Progress for %s\n", r.UserID)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "%-22s %d\n", "Questions asked", s.QuestionsAsked)
	fmt.Fprintf(w, "%-22s %d\n", "Quizzes taken", s.QuizzesTaken)
	fmt.Fprintf(w, "%-22s %s%%\n", "Average score", s.AverageQuizScore.StringFixed(1))
	fmt.Fprintf(w, "%-22s %d min (%d today)\n", "Study time", s.TotalStudyTime, s.TodayStudyTime)
	fmt.Fprintf(w, "%-22s %d\n", "Topics studied", s.TopicsStudiedCount)
	fmt.Fprintf(w, "%-22s %d days (best %d)\n", "Streak", s.CurrentStreak, s.LongestStreak)
	fmt.Fprintf(w, "%-22s %s%%\n", "Overall progress", r.Progress.OverallProgress.StringFixed(1))
	if t := r.Progress.QuizPerformance.Trend; t != "" {
		fmt.Fprintf(w, "%-22s %s\n", "Recent trend", t)
	}

	if len(r.Achievements) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Achievements")
		for _, a := range r.Achievements {
			fmt.Fprintf(w, "  %s: %s\n", a.Title, a.Description)
		}
	}
}
