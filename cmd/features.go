package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List which capabilities are available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd, io.Discard)
		if err != nil {
			return err
		}
		defer svc.Close()
		return svc.Features.Print(cmd.OutOrStdout())
	},
}
