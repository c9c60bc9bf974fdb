package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/app"
	"github.com/cadetcorps/cadet/internal/features"
)

// runApp builds the services and launches the TUI. Logs go to a file in
// the data directory so they do not tear the screen.
func runApp(cmd *cobra.Command, opts app.Options) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "cadet.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	svc, err := openServices(cmd, logFile)
	if err != nil {
		return err
	}
	defer svc.Close()

	if !svc.Features.Available(features.LLM) {
		c, _ := svc.Features.Get(features.LLM)
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", c.Reason)
		fmt.Fprintln(os.Stderr, "Quiz generation and the study assistant will be unavailable.")
	}

	return app.Run(cmd.Context(), svc, svc.Config.User, opts)
}
