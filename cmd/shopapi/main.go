package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopapi",
		Short: "Product catalog and notification backend for the retouch shop",
		Long: `shopapi serves the product catalog (CRUD, spreadsheet import and export),
relays retouch requests to Telegram and forwards photo uploads to the CDN.

Examples:
  shopapi serve -c /etc/shopapi.yml           # HTTP server on web.host:web.port
  shopapi lambda --route /products            # AWS Lambda entry for one function
  shopapi import catalog.xlsx                 # bulk import from a local workbook
  shopapi export --format csv --out all.csv   # dump the catalog`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default $SHOPAPI_CONFIG)")

	root.AddCommand(
		newServeCommand(),
		newLambdaCommand(),
		newMigrateCommand(),
		newImportCommand(),
		newExportCommand(),
	)
	return root
}
