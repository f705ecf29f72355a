package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOutput string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <sites|products|inventory>",
	Short: "Export one entity kind to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindFromString(args[0])
		if err != nil {
			return err
		}

		service, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		wb, err := service.Export(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		data, err := wb.Bytes()
		if err != nil {
			return fmt.Errorf("failed to render workbook: %w", err)
		}

		out := exportOutput
		if out == "" {
			out = fmt.Sprintf("rims-%s.xlsx", args[0])
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		logg.Info("Export complete", zap.String("kind", kind.String()), zap.String("file", out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File to write to (default rims-<kind>.xlsx)")
	RootCmd.AddCommand(exportCmd)
}
