package main

import (
	"encoding/json"
	"fmt"

	"paygate/internal/configuration"
	"paygate/internal/transaction"

	"github.com/spf13/cobra"
)

// signCmd prints the signed outbound request a configuration produces, to
// compare against a provider's test tool.
func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [file] [alias]",
		Short: "Build and sign the outbound request for a sample transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			amount, _ := flags.GetInt64("amount")
			code, _ := flags.GetString("currency")
			itemID, _ := flags.GetString("item")
			txID, _ := flags.GetString("id")

			store, err := configuration.LoadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := store.FindByAlias(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			registry, err := newRegistry()
			if err != nil {
				return err
			}
			g, err := registry.Validate(cfg)
			if err != nil {
				return err
			}

			tx, err := transaction.New(cfg.Alias, transaction.Params{ItemID: itemID, Amount: amount, CurrencyCode: code})
			if err != nil {
				return err
			}
			if txID != "" {
				tx.ID = txID
			}

			req, err := g.Initialize(cmd.Context(), cfg, tx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(req); err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Int64("amount", 1000, "Amount in minor units")
	cmd.Flags().String("currency", "EUR", "ISO-4217 currency code")
	cmd.Flags().String("item", "debug-item", "Item id")
	cmd.Flags().String("id", "", "Fixed transaction id (random when empty)")
	return cmd
}
