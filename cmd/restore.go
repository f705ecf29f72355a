package cmd

import (
	"fmt"
	"os"

	"rims/feature/inventory/restore"
	"rims/feature/inventory/sheet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var restoreActor string

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <backup.xlsx>",
	Short: "Replace the full database from a backup spreadsheet",
	Long: `Wipes all sites, products and inventory and reloads them from the
given backup workbook. The restore runs in a single transaction: if any
sheet fails to import cleanly the database is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		wb, err := sheet.ReadBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		service, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		// The CLI runs with operator privileges, so grant everything.
		summary, err := service.Restore(cmd.Context(), wb, restoreActor, restore.FullCapabilities())
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		logg.Info("Restore complete", zap.String("summary", summary))
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreActor, "actor", "cli", "Name recorded in the audit log for this restore")
	RootCmd.AddCommand(restoreCmd)
}
