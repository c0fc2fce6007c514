package main

import (
	"fmt"

	"github.com/bissquit/fieldops/internal/identity/jwt"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for a user",
	Long: "Sign a bearer token for a user id with the configured secret.\n" +
		"The token is only honored while the user exists and is active.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		userID, err := cmd.Flags().GetInt64("user-id")
		if err != nil {
			return fmt.Errorf("read flag `user-id`: %w", err)
		}
		if userID <= 0 {
			return fmt.Errorf("--user-id must be positive")
		}

		auth := jwt.NewAuthenticator(jwt.Config{
			SecretKey:           cfg.JWT.SecretKey,
			Issuer:              cfg.JWT.Issuer,
			AccessTokenDuration: cfg.JWT.AccessTokenDuration,
		})

		token, err := auth.GenerateToken(cmd.Context(), userID)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64P("user-id", "u", 0, "User id to sign the token for")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}
