package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupOutput string

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the full database to a spreadsheet",
	Long: `Exports sites, products and the inventory ledger into a single
three-sheet workbook. The workbook is written to the given file and, when
object storage is configured, also uploaded to the backup bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		wb, objectName, err := service.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		data, err := wb.Bytes()
		if err != nil {
			return fmt.Errorf("failed to render backup workbook: %w", err)
		}
		if err := os.WriteFile(backupOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", backupOutput, err)
		}

		logg.Info("Backup complete",
			zap.String("file", backupOutput),
			zap.String("object", objectName),
		)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "rims-backup.xlsx", "File to write the backup workbook to")
	RootCmd.AddCommand(backupCmd)
}
