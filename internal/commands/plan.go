package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/plan"
	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/probe"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/storage"
)

var (
	outputFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage provisioning plans",
	Long: `Parse and apply declarative provisioning plans.

A plan is a YAML file naming nodes and the allocation ranges each
node's pool must contain. Application is idempotent: re-applying a
plan only creates what is missing and reports the rest as skipped.`,
}

var planParseCmd = &cobra.Command{
	Use:   "parse <plan-file>",
	Short: "Parse and validate a plan file",
	Long:  "Parse a plan file and report validation findings without touching the database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read plan file: %w", err)
		}

		result, parseErr := plan.Parse(data)
		if result == nil {
			return fmt.Errorf("failed to parse plan: %w", parseErr)
		}

		if outputFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		if result.Definition != nil {
			fmt.Printf("Plan:     %s\n", result.Definition.Name)
			fmt.Printf("Nodes:    %d\n", len(result.Definition.Nodes))
		}
		for _, w := range result.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}
		for _, e := range result.Errors {
			fmt.Printf("✗ %s\n", e)
		}

		if parseErr != nil {
			return fmt.Errorf("plan is not applicable")
		}

		fmt.Println("✓ Plan is valid")
		return nil
	},
}

var planApplyCmd = &cobra.Command{
	Use:   "apply <plan-file>",
	Short: "Apply a plan",
	Long: `Apply a provisioning plan against the local database.

Every step runs even when an earlier one failed; the outcome of each
step is recorded and persisted for later inspection.

Examples:
  # Apply a plan
  portico plan apply eu-rollout.yaml

  # Re-apply after an edit; existing pieces are skipped
  portico plan apply eu-rollout.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read plan file: %w", err)
		}

		// Initialize storage
		store, err := storage.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		notices := notify.NewQueue(cfg.Notices.TTL, cfg.Notices.Max)
		reg := registry.New(store, pool.NewManager(store), probe.New(cfg.Probe.Timeout), notices)

		logger := log.New(os.Stdout, "[plan] ", log.LstdFlags)
		svc, err := plan.NewService(reg, store, notices, logger)
		if err != nil {
			return fmt.Errorf("failed to create plan service: %w", err)
		}

		result, err := svc.Parse(data)
		if err != nil {
			for _, e := range result.Errors {
				fmt.Printf("✗ %s\n", e)
			}
			return fmt.Errorf("plan is not applicable")
		}
		for _, w := range result.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}

		record, err := svc.Apply(cmd.Context(), result.Definition)
		if err != nil {
			return fmt.Errorf("failed to apply plan: %w", err)
		}

		fmt.Printf("\n✓ Plan %s applied (ID: %s)\n\n", record.Name, record.ID)
		fmt.Printf("Steps:     %d\n", record.Total)
		fmt.Printf("Created:   %d\n", record.Succeeded)
		fmt.Printf("Skipped:   %d\n", record.Skipped)
		fmt.Printf("Failed:    %d\n", record.Failed)
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACTION\tTARGET\tSTATUS\tCREATED\tERROR")
		for _, res := range record.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				res.Action, res.Target, res.Status, res.Created, res.Error)
		}
		w.Flush()

		if record.Failed > 0 {
			return fmt.Errorf("%d plan step(s) failed", record.Failed)
		}
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applied plans",
	Long:  "List the stored records of past plan applications.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Initialize storage
		store, err := storage.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		records, err := store.ListPlanRecords()
		if err != nil {
			return fmt.Errorf("failed to list plan records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No plans applied yet.")
			return nil
		}

		// Output based on format
		if outputFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		// Table format
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tAPPLIED\tSTEPS\tCREATED\tSKIPPED\tFAILED")
		for _, record := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				record.ID,
				record.Name,
				record.AppliedAt.Format("2006-01-02 15:04:05"),
				record.Total,
				record.Succeeded,
				record.Skipped,
				record.Failed,
			)
		}
		w.Flush()

		return nil
	},
}

var planStatusCmd = &cobra.Command{
	Use:   "status <plan-id>",
	Short: "Show the record of one plan application",
	Long:  "Show the stored per-step outcomes of a past plan application.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID := args[0]

		// Initialize storage
		store, err := storage.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		record, err := store.GetPlanRecord(planID)
		if err != nil {
			return fmt.Errorf("failed to get plan record: %w", err)
		}

		if outputFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(record)
		}

		fmt.Printf("Plan:      %s\n", record.Name)
		fmt.Printf("ID:        %s\n", record.ID)
		fmt.Printf("Applied:   %s\n", record.AppliedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Steps:     %d\n", record.Total)
		fmt.Printf("Created:   %d\n", record.Succeeded)
		fmt.Printf("Skipped:   %d\n", record.Skipped)
		fmt.Printf("Failed:    %d\n", record.Failed)
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACTION\tTARGET\tSTATUS\tCREATED\tERROR")
		for _, res := range record.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				res.Action, res.Target, res.Status, res.Created, res.Error)
		}
		w.Flush()

		return nil
	},
}

func init() {
	planParseCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")
	planListCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	planStatusCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")

	planCmd.AddCommand(planParseCmd)
	planCmd.AddCommand(planApplyCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planStatusCmd)
}
