package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperengineering/waypoint/internal/config"
	"github.com/hyperengineering/waypoint/internal/seed"
	"github.com/hyperengineering/waypoint/internal/store"
	"github.com/spf13/cobra"
)

var (
	seedOwner  string
	seedDBPath string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace an owner's goals and tasks with demo data",
	Long: "Delete every goal and task of the given owner and load the demo dataset:\n" +
		"four goals, five one-off tasks and ten weekly series.",
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedOwner, "owner", "", "Owner id to seed (required)")
	seedCmd.Flags().StringVar(&seedDBPath, "db", "",
		"Database path (overrides config and WAYPOINT_DB_PATH)")
	_ = seedCmd.MarkFlagRequired("owner")
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := seedDBPath
	if path == "" {
		dbCfg, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = dbCfg.Path
	}

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := seed.Demo(context.Background(), s, seedOwner, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded owner %q: %d goals, %d tasks (%d weekly series)\n",
		seedOwner, len(res.Goals), len(res.Tasks), len(res.Groups))
	return nil
}
