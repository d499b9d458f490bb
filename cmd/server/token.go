package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mx-space/folio/internal/middleware"
	"github.com/mx-space/folio/internal/pkg/jwt"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token signed with jwt_secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.JWTSecret == "" {
			logger.Warn("jwt_secret is empty, token is signed with the built-in default secret")
		}
		token, err := jwt.NewIssuer(appConfig.JWTSecret).Sign(tokenSubject, middleware.AdminRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "owner", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "token lifetime")
}
