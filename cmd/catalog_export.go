package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafe.GO/cron/jobs"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "catalog:export",
	Short: "Write the catalog as JSON (default MEDIA_DIR/catalog.json)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		path := exportPath
		if path == "" {
			path = jobs.CatalogPath(d)
		}
		n, err := d.Catalog.ExportFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "Output file")
	rootCmd.AddCommand(exportCmd)
}
