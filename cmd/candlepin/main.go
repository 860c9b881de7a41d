package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/cli/auth"
	"github.com/candlepin/candlepin-sub005/internal/interfaces/cli/migrate"
	"github.com/candlepin/candlepin-sub005/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "candlepin",
		Short:        "Candlepin - subscription pool and entitlement service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		auth.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
