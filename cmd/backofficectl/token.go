package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jar-backoffice/internal/platform/auth"
)

type tokenOptions struct {
	OwnerID int64
	StaffID int64
	Role    string
	TTL     time.Duration
}

func newTokenCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an owner",
		Long: `Sign an API token with the configured secret and issuer.

Example:
  backofficectl token --owner 1 --staff 7 --role cashier
  backofficectl token --owner 1 --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.config()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ttl := cfg.Auth.TokenTTL
			if opts.TTL > 0 {
				ttl = opts.TTL
			}

			tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}

			token, err := tokens.Issue(auth.Principal{
				OwnerID: opts.OwnerID,
				StaffID: opts.StaffID,
				Role:    opts.Role,
			})
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.OwnerID, "owner", 0, "owner (tenant) id (required)")
	cmd.Flags().Int64Var(&opts.StaffID, "staff", 0, "staff id recorded as the actor")
	cmd.Flags().StringVar(&opts.Role, "role", "", "role claim")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "token lifetime, defaults to AUTH_TOKEN_TTL")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
