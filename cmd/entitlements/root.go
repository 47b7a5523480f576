package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "entitlements",
		Short:         "Operational CLI for the credit entitlement engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
		newBalanceCmd(),
		newConsumeCmd(),
	)

	return rootCmd
}
