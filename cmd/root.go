package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cadetcorps/cadet/internal/app"
	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/config"
	"github.com/cadetcorps/cadet/internal/logging"
	"github.com/cadetcorps/cadet/internal/progress"
)

var rootCmd = &cobra.Command{
	Use:           "cadet",
	Short:         "NCC study companion",
	Long:          "Cadet is a terminal study companion for National Cadet Corps cadets: generated quizzes, a study assistant and progress tracking.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.Options{})
	},
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML, TOML or JSON config file")
	pf.String("db", "", "Database path or URL (overrides CADET_STORE_DSN)")
	pf.String("data-dir", "", "Directory for progress files and exports (overrides CADET_DATA_DIR)")
	pf.String("user", "", "User id for progress tracking (overrides CADET_USER)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration and applies the persistent flags on
// top of it. Flags win over the file and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.DSN = p
	}
	if d, _ := cmd.Flags().GetString("data-dir"); d != "" {
		cfg.DataDir = d
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.User = u
	}
	if !progress.ValidUserID(cfg.User) {
		return config.Config{}, fmt.Errorf("%w: %q", progress.ErrInvalidUser, cfg.User)
	}
	return cfg, nil
}

// openServices loads the configuration, installs the logger writing to
// logw and builds the services. The caller must Close them.
func openServices(cmd *cobra.Command, logw io.Writer) (*bootstrap.Services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(logw, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	svc, err := bootstrap.Build(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
