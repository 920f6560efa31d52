package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("problem", "", "")
	cmd.Flags().String("solution", "", "")
	cmd.Flags().String("maps", "", "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().Duration("visit_time_window", 0, "")
	cmd.Flags().Duration("break_time_window", 0, "")
	cmd.Flags().Duration("begin_end_shift_time_extension", 0, "")
	cmd.Flags().Duration("opt_time_limit", 0, "")
	cmd.Flags().Duration("no_progress_time_limit", 0, "")
	cmd.Flags().String("console_format", "", "")
	cmd.Flags().String("log-level", "info", "")
	cmd.Flags().Bool("log-json", false, "")
	return cmd
}

func TestLoadConfigFallsBackToDefaultsWhenNoFlagsSet(t *testing.T) {
	cfg, err := loadConfig(newTestCommand())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.OptTimeLimit)
}

func TestLoadConfigFlagOverridesDefault(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("problem", "problem.json"))
	require.NoError(t, cmd.Flags().Set("opt_time_limit", "90s"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "problem.json", cfg.ProblemPath)
	assert.Equal(t, 90*time.Second, cfg.OptTimeLimit)
}
