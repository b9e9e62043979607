package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/horary/internal/server"
	"github.com/okian/horary/pkg/logger"
)

var recastCmd = &cobra.Command{
	Use:   "recast [id...]",
	Short: "Judge stored questions again",
	Long: `Re-judge stored questions with the current tables and settings and
print a summary. Without ids every stored question is recast. Only useful
with a persistent store (HORARY_STORE_DRIVER=sqlite).`,
	RunE: runRecast,
}

func init() {
	rootCmd.AddCommand(recastCmd)
}

func runRecast(cmd *cobra.Command, ids []string) error {
	ctx := cmd.Context()

	svc, err := server.NewService(ctx, cfg, logger.Get().Named("horary"))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(ctx) }()

	sum, err := svc.Recast(ctx, ids...)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), sum)
}
