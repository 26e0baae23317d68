package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"vidaview/config"
	"vidaview/database"
	unitRepo "vidaview/database/repository/unit"
	"vidaview/models"
	"vidaview/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func MigrateCmd() *cobra.Command {
	var unitsFile string

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Prepares the storage schema and optionally seeds units",
		Long:  `Creates or updates tables (postgres, sqlite) or collection indexes (mongo). With --units, upserts the unit listings from a JSON array file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.GetLogger()
			defer func() { _ = logger.Sync() }()

			repos, _, closer, err := openRepositories(logger)
			if err != nil {
				return err
			}
			defer closer()

			if config.AppConfig.DBDriver != "mongo" {
				if err := database.AutoMigrate(database.DB); err != nil {
					return fmt.Errorf("failed to migrate schema: %w", err)
				}
			}
			logger.Info("schema ready", zap.String("driver", config.AppConfig.DBDriver))

			if unitsFile == "" {
				return nil
			}
			f, err := os.Open(unitsFile)
			if err != nil {
				return fmt.Errorf("failed to open units file: %w", err)
			}
			defer f.Close()

			count, err := seedUnits(cmd.Context(), repos.Units, f, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d unit(s)\n", count)
			return nil
		},
	}
	command.Flags().StringVar(&unitsFile, "units", "", "JSON file with an array of units to upsert")
	return command
}

// seedUnits upserts every unit decoded from r.
func seedUnits(ctx context.Context, repo unitRepo.UnitRepository, r io.Reader, now time.Time) (int, error) {
	var units []models.Unit
	if err := json.NewDecoder(r).Decode(&units); err != nil {
		return 0, fmt.Errorf("failed to decode units: %w", err)
	}
	for i := range units {
		unit := &units[i]
		if unit.ID == "" {
			return i, utils.NewValidationError("id", fmt.Sprintf("unit at index %d has no id", i))
		}
		if unit.MinimumStayMonths < 1 {
			unit.MinimumStayMonths = 1
		}
		if unit.CreatedAt.IsZero() {
			unit.CreatedAt = now
		}
		unit.UpdatedAt = now
		if err := repo.Upsert(ctx, unit); err != nil {
			return i, err
		}
	}
	return len(units), nil
}
