package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfitz/personnel/auth"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/spf13/cobra"
)

var (
	tokenEmail string
	tokenName  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and revoke API bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <subject>",
	Short: "Issue a signed bearer token for subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := auth.NewTokenService(cfg.Auth.JWT)
		if err != nil {
			return err
		}
		token, claims, err := tokens.IssueToken(args[0], tokenEmail, tokenName)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return json.NewEncoder(out).Encode(map[string]any{
				"access_token": token,
				"token_type":   "Bearer",
				"expires_at":   claims.ExpiresAt.Time,
			})
		}
		fmt.Fprintln(out, token)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Revoke a token until it expires (requires redis)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Redis.Enabled {
			return errors.New("token revocation requires redis to be enabled")
		}
		tokens, err := auth.NewTokenService(cfg.Auth.JWT)
		if err != nil {
			return err
		}
		claims, err := tokens.VerifyToken(args[0])
		if err != nil {
			return err
		}

		redisDB, err := db.NewRedisDB(cfg.RedisConfig())
		if err != nil {
			return err
		}
		defer func() { _ = redisDB.Close() }()

		revocations := auth.NewTokenRevocationList(redisDB, db.NewRedisKeyBuilder(cfg.Redis.KeyPrefix))
		if err := revocations.Revoke(cmd.Context(), args[0], claims); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked token for %s until %s\n", claims.Subject, claims.ExpiresAt.Time.UTC().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenIssueCmd.Flags().StringVar(&tokenName, "name", "", "name claim")
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
