// Command storefront runs the storefront API and its maintenance tasks.
//
//	storefront serve              # HTTP + gRPC + workers
//	storefront migrate            # apply pending migrations
//	storefront migrate:rollback
//	storefront migrate:status
//	storefront seed [name...]     # demo catalog, users and one order
//	storefront route:list
//	storefront queue:work -w 4
//	storefront queue:failed
//	storefront queue:retry
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
	Short:         "Storefront e-commerce API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(queueRetryCmd)
}
