package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtmw "index_backend/internal/platform/jwt"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cfg.Auth.JWTSecret == "" {
				return errors.New("missing secret: set auth.jwt_secret or env JWT_SECRET")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "client name stored in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
