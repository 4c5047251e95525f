package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/portico-hosting/portico/agent"
	"github.com/portico-hosting/portico/internal/auth"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start the node agent",
	Long:  `Start the agent that serves the node daemon endpoint and syncs workload state with the API`,
	RunE:  runAgent,
}

func init() {
	agentCmd.Flags().String("api-url", "", "API server URL")
	agentCmd.Flags().String("node-id", "", "Node this agent reports for")
	agentCmd.Flags().String("listen-host", "", "Daemon endpoint bind address")
	agentCmd.Flags().Int("listen-port", 0, "Daemon endpoint port")

	// These should never fail as flags are defined above
	_ = viper.BindPFlag("agent.api_url", agentCmd.Flags().Lookup("api-url"))         //nolint:errcheck
	_ = viper.BindPFlag("agent.node_id", agentCmd.Flags().Lookup("node-id"))         //nolint:errcheck
	_ = viper.BindPFlag("agent.listen_host", agentCmd.Flags().Lookup("listen-host")) //nolint:errcheck
	_ = viper.BindPFlag("agent.listen_port", agentCmd.Flags().Lookup("listen-port")) //nolint:errcheck
}

func runAgent(cmd *cobra.Command, args []string) error {
	fmt.Println("🤖 Starting Portico Agent")
	fmt.Printf("   Version: %s\n", rootCmd.Version)
	fmt.Printf("   Node ID: %s\n", cfg.Agent.NodeID)
	fmt.Printf("   API URL: %s\n", cfg.Agent.APIURL)
	fmt.Printf("   Daemon:  %s:%d\n", cfg.Agent.ListenHost, cfg.Agent.ListenPort)
	fmt.Println()

	// Prefer a configured token; otherwise mint one when auth is enabled
	agentToken := cfg.Agent.AgentToken
	if agentToken == "" && cfg.Security.AuthEnabled && cfg.Security.JWTSecret != "" {
		// Generate a long-lived token (7 days)
		token, err := auth.GenerateAgentToken(
			cfg.Security.JWTSecret,
			cfg.Agent.NodeID,
			7*24*time.Hour,
		)
		if err != nil {
			return fmt.Errorf("failed to generate agent token: %w", err)
		}
		agentToken = token
	}

	a, err := agent.New(
		cfg.Agent.APIURL,
		cfg.Agent.NodeID,
		agentToken,
		cfg.Agent.ListenHost,
		cfg.Agent.ListenPort,
		cfg.Agent.SyncInterval,
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("✓ Agent started")
	fmt.Println("   Serving daemon endpoint and pushing workload state...")
	fmt.Println()

	go func() {
		if err := a.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Stopping agent...")
	cancel()

	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Agent close error: %v\n", err)
	}

	fmt.Println("✓ Agent stopped")
	return nil
}
