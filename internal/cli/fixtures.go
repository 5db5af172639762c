package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"venuedash/internal/infra/config"
	mongodb "venuedash/internal/infra/db/mongo"
	"venuedash/internal/infra/obs"
	"venuedash/internal/infra/storage/memory"
)

// NewFixturesCmd seeds the mongo collections from a fixtures file.
func NewFixturesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Load venue and booking fixtures into MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.MongoURI == "" {
				return errors.New("MONGO_URI is required")
			}
			if file == "" {
				file = cfg.VenueFixtures
			}
			logger := obs.NewLogger(cfg.Env)

			fx, err := memory.LoadFixturesFile(file)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer client.Close(context.Background())
			if err := client.EnsureIndexes(ctx); err != nil {
				return err
			}
			if err := fx.Seed(ctx, mongodb.NewVenueRepository(client.DB), mongodb.NewBookingRepository(client.DB)); err != nil {
				return err
			}
			logger.Info("fixtures loaded", "path", file, "venues", len(fx.Venues), "bookings", len(fx.Bookings))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "fixtures JSON file (defaults to VENUE_FIXTURES)")
	return cmd
}
