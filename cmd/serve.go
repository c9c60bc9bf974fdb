package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/features"
	"github.com/cadetcorps/cadet/internal/server"
	"github.com/cadetcorps/cadet/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, metrics and the Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer svc.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			svc.Config.Server.Addr = addr
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); cmd.Flags().Changed("metrics-addr") {
			svc.Config.Server.MetricsAddr = addr
		}
		noBot, _ := cmd.Flags().GetBool("no-telegram")

		var extra []func(ctx context.Context) error
		switch {
		case noBot:
		case svc.Features.Available(features.Telegram):
			bot, err := telegram.NewBot(svc)
			if err != nil {
				slog.Warn("serve: telegram bot disabled", "error", err)
				svc.Features.Disable(features.Telegram, err.Error())
				break
			}
			extra = append(extra, bot.Run)
		default:
			c, _ := svc.Features.Get(features.Telegram)
			slog.Info("serve: telegram bot not started", "reason", c.Reason)
		}

		return server.New(svc).Run(cmd.Context(), extra...)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	serveCmd.Flags().String("metrics-addr", "", "Metrics listen address; empty serves /metrics on the API listener")
	serveCmd.Flags().Bool("no-telegram", false, "Do not start the Telegram bot")
}
