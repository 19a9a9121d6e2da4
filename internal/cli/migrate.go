package cli

import (
	"fmt"

	"banksantri/internal/infrastructure/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Migrate(db); err != nil {
		return err
	}
	zap.L().Info("schema migrated")
	fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
	return nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default transaction type catalog",
	Long:  `Insert SETORAN, PENARIKAN, TRANSFER, PEMBAYARAN and BIAYA_ADMIN when missing. Existing codes are left untouched.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := database.SeedTransactionTypes(db)
	if err != nil {
		return err
	}
	zap.L().Info("transaction types seeded", zap.Int("created", created))
	fmt.Fprintf(cmd.OutOrStdout(), "%d transaction type(s) created\n", created)
	return nil
}
