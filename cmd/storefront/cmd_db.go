package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/app"
)

// storefront migrate: indexes and the product id counter are brought up
// to date by Boot; this runs that step on its own.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create indexes and sync the product id counter",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		a.Close(context.Background())

		fmt.Fprintln(cmd.OutOrStdout(), "Indexes and product id counter are up to date.")
		return nil
	},
}

var importDisk string

// storefront import <file.csv>: bulk-load products.
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import products from a CSV file (name,image,category,new_price,old_price)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		src, err := openSource(cmd, a, args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		report, err := a.Importer.Import(ctx, src)
		if report != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d products.\n", len(report.Added))
			for _, f := range report.Failed {
				fmt.Fprintf(out, "  row %d skipped: %s\n", f.Row, f.Reason)
			}
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importDisk, "disk", "", "read the file from a storage disk (local, s3) instead of the filesystem")
}

func openSource(cmd *cobra.Command, a *app.Application, name string) (io.ReadCloser, error) {
	if importDisk == "" {
		return os.Open(name)
	}

	disk, err := a.Disks.Use(importDisk)
	if err != nil {
		return nil, err
	}
	return disk.Get(cmd.Context(), name)
}
