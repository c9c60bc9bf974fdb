package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
)

func flagCommand(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	for _, name := range []string{"config", "db", "data-dir", "user"} {
		c.Flags().String(name, "", "")
	}
	for k, v := range set {
		require.NoError(t, c.Flags().Set(k, v))
	}
	return c
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CADET_USER", "env-user")
	t.Setenv("CADET_DATA_DIR", "/from/env")

	dir := t.TempDir()
	c := flagCommand(t, map[string]string{
		"user":     "flag-user",
		"data-dir": dir,
		"db":       filepath.Join(dir, "cadet.db"),
	})

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "flag-user", cfg.User)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "cadet.db"), cfg.Store.DSN)
}

func TestLoadConfig_EnvironmentWithoutFlags(t *testing.T) {
	t.Setenv("CADET_USER", "env-user")

	cfg, err := loadConfig(flagCommand(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.User)
}

func TestLoadConfig_RejectsInvalidUser(t *testing.T) {
	_, err := loadConfig(flagCommand(t, map[string]string{"user": "../etc/passwd"}))
	require.ErrorIs(t, err, progress.ErrInvalidUser)
}

func TestQuestionsDemo_OutputParsesBack(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"questions", "demo"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	qs, bad := quiz.ParseResponse(out.String(), quiz.Metadata{})
	assert.Empty(t, bad)
	assert.Len(t, qs, len(quiz.DemoQuestions()))
}

func TestQuestionsImport_Summary(t *testing.T) {
	var bank bytes.Buffer
	require.NoError(t, quiz.ExportQuestions(&bank, quiz.DemoQuestions()))
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, bank.Bytes(), 0o644))

	var out bytes.Buffer
	questionsImportCmd.SetOut(&out)
	t.Cleanup(func() { questionsImportCmd.SetOut(nil) })

	require.NoError(t, questionsImportCmd.RunE(questionsImportCmd, []string{path}))
	assert.Contains(t, out.String(), "valid question(s)")
}

func TestQuestionsImport_RejectsInvalidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions": [{"question": ""}]}`), 0o644))

	err := questionsImportCmd.RunE(questionsImportCmd, []string{path})
	require.Error(t, err)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(decimal.RequireFromString("0.0042")))
	assert.Equal(t, "$1.50", formatCost(decimal.RequireFromString("1.5")))
}

func TestPrintReport(t *testing.T) {
	p := progress.Default("cadet-1")
	p.QuestionsAsked = 3

	var out bytes.Buffer
	printReport(&out, p.Report(time.Now()))
	assert.Contains(t, out.String(), "Progress for cadet-1")
	assert.Contains(t, out.String(), "Questions asked")
}
