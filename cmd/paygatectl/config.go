package main

import (
	"fmt"

	"paygate/internal/config"
	"paygate/internal/configuration"

	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gateway configuration files",
	}
	cmd.AddCommand(configValidateCmd())
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check every configuration in a YAML file against its gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")

			store, err := configuration.LoadFile(args[0])
			if err != nil {
				return err
			}
			cfgs, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			registry, err := newRegistry()
			if err != nil {
				return err
			}
			if err := configuration.ValidateAll(registry, cfgs); err != nil {
				return err
			}

			urls := &config.Config{PublicBaseURL: baseURL}
			out := cmd.OutOrStdout()
			for _, c := range cfgs {
				state := "enabled"
				if !c.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "ok  %-16s %-10s %-8s %s\n", c.Alias, c.GatewayName, state, urls.CallbackURL(c.Alias))
			}
			fmt.Fprintf(out, "%d configuration(s) valid\n", len(cfgs))
			return nil
		},
	}

	cmd.Flags().String("base-url", "http://localhost:8080", "Public base URL used to print callback URLs")
	return cmd
}
