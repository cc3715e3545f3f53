package main

import (
	"github.com/spf13/cobra"

	"github.com/jar-backoffice/internal/config"
)

// rootOptions holds flags shared by every subcommand
type rootOptions struct {
	ConfigName string

	// loadConfig is swapped in tests
	loadConfig func(name string) (*config.Config, error)
}

func (o *rootOptions) config() (*config.Config, error) {
	return o.loadConfig(o.ConfigName)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&rootOptions{loadConfig: config.LoadConfig})
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Operations tool for the jar back office",
		Long:          "Runs schema migrations and issues API tokens using the back office configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigName, "config", "backoffice", "config file name without extension")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}
