// cmd/planner/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/replenish-go/internal/cache"
	"github.com/andresuchdata/replenish-go/internal/config"
	"github.com/andresuchdata/replenish-go/internal/repository/postgres"
	"github.com/andresuchdata/replenish-go/internal/service"
	"github.com/andresuchdata/replenish-go/internal/storage"
	"github.com/andresuchdata/replenish-go/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newPlanningService(c *cli.Context, cfg *config.Config) (*service.PlanningService, *postgres.DB, error) {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return nil, nil, err
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	svc, err := service.NewPlanningService(
		cfg,
		postgres.NewForecastRepository(db),
		postgres.NewPlanRepository(db),
		postgres.NewAccuracyRepository(db),
		forecastCache,
	)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return svc, db, nil
}

func runPlanning(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.App.DataDir
	}

	svc, db, err := newPlanningService(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := svc.RunPlanning(c.Context, dataDir)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("items", result.Run.TotalItems).
		Int("fallbacks", result.Run.FallbackItems).
		Int("accuracy_records", len(result.Accuracy)).
		Msg("planning run finished")
	return nil
}

func fetchExtracts(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is not enabled (set STORAGE_ENABLED=true)")
	}

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.App.DataDir
	}
	return storage.FetchExtracts(c.Context, client, c.String("prefix"), dataDir)
}

func showAccuracy(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	svc, db, err := newPlanningService(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	since := time.Now().AddDate(0, -c.Int("months"), 0)
	records, err := svc.ListAccuracy(c.Context, c.String("item"), since)
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Printf("%-20s %-28s months=%d rmse=%.2f mape=%.1f%% bias=%+.2f evaluated=%s\n",
			rec.ItemID, rec.Model, rec.MonthsEvaluated, rec.RMSE, rec.MAPE, rec.Bias,
			rec.EvaluatedAt.Format("2006-01-02"))
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planner",
		Usage: "Run the demand forecasting and replenishment planning batch",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute a full planning run against the extract directory",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the extract CSV files",
						EnvVars: []string{"APP_DATA_DIR"},
					},
				},
				Action: runPlanning,
			},
			{
				Name:  "fetch",
				Usage: "Download the extract CSVs from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Destination directory for the extracts",
						EnvVars: []string{"APP_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix inside the bucket",
						Value: "extracts",
					},
				},
				Action: fetchExtracts,
			},
			{
				Name:  "accuracy",
				Usage: "Show recent forecast accuracy records",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "item",
						Usage: "Filter by item code",
					},
					&cli.IntFlag{
						Name:  "months",
						Usage: "Lookback window in months",
						Value: 6,
					},
				},
				Action: showAccuracy,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
