package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"github.com/spf13/cobra"
)

var (
	mintKeyFile  string
	mintIssuer   string
	mintUserID   string
	mintUsername string
	mintRole     string
	mintTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage session tokens",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a session token with the server's signing key",
	Long: `mint signs a session token locally with the board's RSA signing key.
It is meant for operators and local development; the issuer must match the
server's board.issuer_url.

  boardctl token mint --key keys/signing.pem --user 00000000-0000-0000-0000-000000000003 --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(mintUserID)
		if err != nil {
			return fmt.Errorf("--user must be a UUID: %w", err)
		}
		role := policy.ParseRole(mintRole)
		if string(role) != mintRole {
			return fmt.Errorf("--role must be member, moderator or admin")
		}
		key, err := identity.LoadKey(mintKeyFile)
		if err != nil {
			return err
		}
		tok, err := identity.NewTokenIssuer(key, mintIssuer, mintTTL).Issue(userID, mintUsername, role)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().StringVar(&mintKeyFile, "key", "keys/signing.pem", "RSA signing key PEM file")
	tokenMintCmd.Flags().StringVar(&mintIssuer, "issuer", "http://localhost:8080", "Token issuer; must match the server")
	tokenMintCmd.Flags().StringVar(&mintUserID, "user", "", "User ID (UUID)")
	tokenMintCmd.Flags().StringVar(&mintUsername, "username", "", "Display name")
	tokenMintCmd.Flags().StringVar(&mintRole, "role", "member", "member, moderator or admin")
	tokenMintCmd.Flags().DurationVar(&mintTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenMintCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(tokenMintCmd)
}
