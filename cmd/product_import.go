package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	productService "cafe.GO/service/product"
)

var (
	importFile  string
	importBatch int
)

var importCmd = &cobra.Command{
	Use:   "products:import",
	Short: "Import products from a CSV file into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()

		d, cleanup, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := d.Catalog.Import(cmd.Context(), d.DB, f, productService.ImportOptions{BatchSize: importBatch})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, `
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Total time:     %s
  - Processing: %s
  - DB upsert:  %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped,
			res.TotalTime.Round(time.Millisecond),
			res.ProcessTime.Round(time.Millisecond),
			res.DBTime.Round(time.Millisecond))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file path (required)")
	_ = importCmd.MarkFlagRequired("file")
	importCmd.Flags().IntVar(&importBatch, "batch-size", 500, "Batch size for DB operations")
	rootCmd.AddCommand(importCmd)
}
