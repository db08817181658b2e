package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func gatewaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gateways",
		Short: "List registered gateways and the parameters each requires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range registry.Names() {
				g, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %s\n", name, strings.Join(g.ParameterNames(), ", "))
			}
			return nil
		},
	}
}
