package main

import (
	"fmt"
	"os"

	"paygate/internal/gateway"
	"paygate/internal/gateway/providers"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

// newRegistry is replaced in tests.
var newRegistry = func() (*gateway.Registry, error) {
	return providers.NewRegistry(providers.Options{XenditBaseURL: os.Getenv("XENDIT_BASE_URL")})
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paygatectl",
		Short:         "Administration tool for payment gateway configurations",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(gatewaysCmd())
	root.AddCommand(configCmd())
	root.AddCommand(signCmd())
	root.AddCommand(tokenCmd())
	return root
}
