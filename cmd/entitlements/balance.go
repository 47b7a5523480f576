package main

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account's current credit balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			app, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			balance, err := app.service.Balance(cmd.Context(), accountID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(balance)
		},
	}
}

func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume <account-id> <cost>",
		Short: "Consume credits from an account (operational check)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			cost, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}

			app, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			decision, err := app.service.CheckAndConsume(cmd.Context(), accountID, cost)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(decision)
		},
	}
}
