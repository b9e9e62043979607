package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/horary/internal/config"
	"github.com/okian/horary/pkg/logger"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "horary",
	Short: "Cast and judge horary charts",
	Long: `horary casts a chart for the moment a question is asked and judges it.

Configuration is read from defaults, then the YAML file named by
HORARY_CONFIG, then HORARY_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
			return err
		}
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if err := logger.SetLevelString(loaded.LogLevel); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
