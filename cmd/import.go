package cmd

import (
	"fmt"
	"os"
	"strings"

	"rims/feature/inventory/importer"
	"rims/feature/inventory/sheet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importModifier string
	importDryRun   bool
	importRetain   bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <sites|products|inventory> <file.xlsx>",
	Short: "Import entities from a spreadsheet",
	Long: `Reads sites, products or inventory ledger rows from a spreadsheet
and merges them into the database. Rows that cannot be read are skipped and
reported as warnings; a dry run parses everything without saving.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindFromString(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
		wb, err := sheet.ReadBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[1], err)
		}

		service, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		opts := importer.Options{
			Save:           !importDryRun,
			RetainModified: importRetain,
		}
		count, warning, err := service.Import(cmd.Context(), kind, wb, importModifier, opts)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		logg.Info("Import complete",
			zap.String("kind", kind.String()),
			zap.Int("count", count),
			zap.Bool("saved", !importDryRun),
		)
		if warning != "" {
			logg.Warn("Import finished with warnings", zap.String("warning", warning))
		}
		return nil
	},
}

func kindFromString(s string) (sheet.Kind, error) {
	switch strings.ToLower(s) {
	case "sites", "site":
		return sheet.KindSite, nil
	case "products", "product":
		return sheet.KindProduct, nil
	case "inventory":
		return sheet.KindInventory, nil
	default:
		return 0, fmt.Errorf("unknown import kind %q, want sites, products or inventory", s)
	}
}

func init() {
	importCmd.Flags().StringVar(&importModifier, "modifier", "cli", "Name stamped on imported rows without one")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate without saving")
	importCmd.Flags().BoolVar(&importRetain, "retain-modified", false, "Keep timestamps from the spreadsheet instead of restamping")
	RootCmd.AddCommand(importCmd)
}
