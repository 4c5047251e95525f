package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/portico-hosting/portico/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage authentication tokens",
	Long:  `Generate and manage authentication tokens for agents and users`,
}

var generateAgentTokenCmd = &cobra.Command{
	Use:   "agent [node-id]",
	Short: "Generate an agent authentication token",
	Long: `Generate a JWT token for agent authentication.

The token is signed with the jwt_secret from the configuration file
and includes the node ID in the claims. By default, tokens expire after 1 year.

Examples:
  # Generate token for a node
  portico token agent node:0f31a9c4

  # Generate token with custom expiration (in hours)
  portico token agent node:0f31a9c4 --expiration 8760

  # Use custom secret (overrides config)
  portico token agent node:0f31a9c4 --secret "my-custom-secret"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateAgentToken,
}

var (
	tokenExpiration int64
	tokenSecret     string
)

func init() {
	// Add flags to generate command
	generateAgentTokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 8760, "Token expiration in hours (default: 8760 = 1 year)")
	generateAgentTokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Token secret (default: from config file)")

	// Add subcommands
	tokenCmd.AddCommand(generateAgentTokenCmd)
}

func runGenerateAgentToken(cmd *cobra.Command, args []string) error {
	nodeID := args[0]

	// Get secret from flag or config
	secret := tokenSecret
	if secret == "" {
		if cfg != nil {
			secret = cfg.Security.JWTSecret
		}

		if secret == "" {
			return fmt.Errorf(`jwt_secret not found in config file and --secret not provided

Please either:
  1. Add to your config.yaml:
     security:
       jwt_secret: your-secret-here

  2. Or use the --secret flag:
     portico token agent %s --secret "your-secret-here"`, nodeID)
		}
	}

	// Convert expiration from hours to duration
	expiration := time.Duration(tokenExpiration) * time.Hour

	// Generate token
	token, err := auth.GenerateAgentToken(secret, nodeID, expiration)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	// Print token information
	fmt.Printf("Agent Token Generated Successfully\n")
	fmt.Printf("==================================\n\n")
	fmt.Printf("Node ID:    %s\n", nodeID)
	fmt.Printf("Expiration: %s (%d hours)\n", expiration, tokenExpiration)
	fmt.Printf("\nToken:\n%s\n\n", token)
	fmt.Printf("Add this to your agent configuration:\n")
	fmt.Printf("  agent:\n")
	fmt.Printf("    agent_token: %s\n\n", token)
	fmt.Printf("⚠️  Keep this token secure! It grants full agent access to your Portico instance.\n")

	return nil
}
