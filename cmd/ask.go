package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the study assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer svc.Close()

		a := svc.NewAssistant(svc.Config.User)
		if a == nil {
			return errors.New("the study assistant is unavailable; run `cadet features` for details")
		}

		answer, err := a.Ask(cmd.Context(), strings.Join(args, " "))
		var quota *chat.QuotaExceededError
		if errors.As(err, &quota) {
			fmt.Fprintln(cmd.ErrOrStderr(), chat.QuotaGuidance)
			return err
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}
