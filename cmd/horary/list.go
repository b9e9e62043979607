package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/horary/internal/domain/types"
	"github.com/okian/horary/internal/server"
	"github.com/okian/horary/pkg/logger"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the most recently asked stored questions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum questions to print")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, err := server.NewService(ctx, cfg, logger.Get().Named("horary"))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(ctx) }()

	recs, err := svc.Recent(ctx, listLimit)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), types.ListResponse{Questions: recs, Count: len(recs)})
}
