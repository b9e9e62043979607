package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/types"
	"github.com/okian/horary/internal/server"
	"github.com/okian/horary/pkg/logger"
)

var (
	castAt       string
	castLat      float64
	castLon      float64
	castName     string
	castQuestion string
	castSystem   string
	castPoints   bool
	castQuincunx bool
)

var castCmd = &cobra.Command{
	Use:   "cast",
	Short: "Cast and judge a chart for a question",
	Long: `Cast a chart for the given moment and place, judge the question and
print the reading as JSON. Without --lat/--lon the configured fallback
location is used; without --at the current time.

Examples:
  horary cast --question "Will I get the job?"
  horary cast --at 2024-03-01T12:00:00Z --lat 40.7 --lon -74 --question "Will they call?"
  horary cast --system porphyry --points --question "Is the ring in the house?"`,
	Args: cobra.NoArgs,
	RunE: runCast,
}

func init() {
	castCmd.Flags().StringVar(&castAt, "at", "", "Moment the question was asked (RFC3339, default now)")
	castCmd.Flags().Float64Var(&castLat, "lat", 0, "Latitude in degrees, north positive")
	castCmd.Flags().Float64Var(&castLon, "lon", 0, "Longitude in degrees, east positive")
	castCmd.Flags().StringVar(&castName, "name", "", "Location name")
	castCmd.Flags().StringVarP(&castQuestion, "question", "q", "", "The question")
	castCmd.Flags().StringVar(&castSystem, "system", "", "House system (regiomontanus, porphyry, equal)")
	castCmd.Flags().BoolVar(&castPoints, "points", false, "Include nodes and Part of Fortune in aspects")
	castCmd.Flags().BoolVar(&castQuincunx, "quincunx", false, "Detect quincunx aspects")
	_ = castCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(castCmd)
}

func runCast(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	var askedAt time.Time
	if castAt != "" {
		t, err := time.Parse(time.RFC3339, castAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		askedAt = t
	}

	var candidates []model.Location
	switch latSet, lonSet := flags.Changed("lat"), flags.Changed("lon"); {
	case latSet && lonSet:
		if err := location.Validate(castLat, castLon); err != nil {
			return err
		}
		candidates = append(candidates, model.Location{
			Latitude: castLat, Longitude: castLon, Name: castName, Source: model.SourceQuestion,
		})
	case latSet || lonSet:
		return types.ErrIncompleteCoordinate
	}

	if flags.Changed("system") {
		cfg.HouseSystem = castSystem
	}
	if flags.Changed("points") {
		cfg.IncludePoints = castPoints
	}
	if flags.Changed("quincunx") {
		cfg.EnableQuincunx = castQuincunx
	}

	svc, err := server.NewService(ctx, cfg, logger.Get().Named("horary"))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(ctx) }()

	q, err := svc.NewQuestion(castQuestion, askedAt, candidates...)
	if err != nil {
		return err
	}
	rec, err := svc.Judge(ctx, q)
	if err != nil {
		return err
	}
	if rec.Reading == nil {
		return errors.New("no reading produced")
	}
	return printJSON(cmd.OutOrStdout(), types.ChartResponse{Question: rec.Question, Reading: *rec.Reading})
}
