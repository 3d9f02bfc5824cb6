package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/store"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run store maintenance tasks",
	Long:  "Prune expired geocode cache entries from the store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		deleted, err := pruneGeocodeCache(ctx, st)
		if err != nil {
			return err
		}

		fmt.Printf("Pruned %d expired geocode cache entries.\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(maintenanceCmd)
}

// pruneGeocodeCache removes expired geocode cache rows and reports how
// many were deleted.
func pruneGeocodeCache(ctx context.Context, st store.Store) (int, error) {
	deleted, err := st.DeleteExpiredGeocodes(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "maintenance: prune geocode cache")
	}
	zap.L().Info("geocode cache pruned", zap.Int("deleted", deleted))
	return deleted, nil
}
