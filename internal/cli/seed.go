package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"growth-hub-quiz/internal/catalog"
	"growth-hub-quiz/internal/infra/postgres"
)

// NewSeedCmd loads a catalog document into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a course catalog into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			c, err := readCatalog(file)
			if err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			if err := postgres.Seed(cmd.Context(), db, c); err != nil {
				return err
			}
			log.Info("catalog seeded",
				zap.Int("questions", len(c.Questions)),
				zap.Int("courses", len(c.Courses)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog JSON file (defaults to the built-in sample)")
	return cmd
}

// readCatalog loads path, or the built-in sample when path is empty.
func readCatalog(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.Sample()
	}
	f, err := os.Open(path)
	if err != nil {
		return catalog.Catalog{}, err
	}
	defer f.Close()
	return catalog.Load(f)
}
