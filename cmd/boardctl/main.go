package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmerrifield20/threadboard/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

var (
	boardURL string
	cfgFile  string
	token    string
	format   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Threadboard moderation CLI",
	Long: `boardctl is the command-line interface for a threadboard server.

It lets moderators browse comment threads, work the report queue, review
the moderation action trail and check the audit chain.

Settings are read from ~/.boardctl/config.yaml (board_url, token) and the
BOARDCTL_* environment variables; flags take precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.boardctl")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("boardctl")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if boardURL == "" {
			boardURL = viper.GetString("board_url")
		}
		if boardURL == "" {
			boardURL = "http://localhost:8080"
		}
		if token == "" {
			token = viper.GetString("token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.boardctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&boardURL, "board", "", "Board server URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (see 'boardctl token mint')")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text or json")

	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds an authenticated client from the persistent flags.
func newClient() (*client.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("no token configured; pass --token or set token in ~/.boardctl/config.yaml")
	}
	return client.New(boardURL, client.WithBearerToken(token))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the boardctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "boardctl %s\n", version)
	},
}
