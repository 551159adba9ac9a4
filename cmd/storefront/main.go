// Command storefront runs the storefront API and its maintenance tasks.
//
//	storefront serve                      # start the HTTP server
//	storefront route:list                 # list API routes
//	storefront migrate                    # create indexes, sync the id counter
//	storefront import products.csv        # bulk-load products from CSV
//	storefront import feeds/p.csv --disk s3
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
}
