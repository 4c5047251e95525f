package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/portico-hosting/portico/internal/integrity"
	"github.com/portico-hosting/portico/internal/storage"
)

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Database integrity checking and repair",
	Long:  `Audit and repair the allocation database`,
}

var integrityAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the database for integrity issues",
	Long:  `Scan every node, allocation, and workload for duplicates, orphans, and range violations`,
	RunE:  runIntegrityAudit,
}

var integrityRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Execute repair operations",
	Long:  `Run an audit and apply the fix for every issue at or below the chosen risk level`,
	RunE:  runIntegrityRepair,
}

func init() {
	// Add flags for audit command
	integrityAuditCmd.Flags().Bool("json", false, "Output results as JSON")

	// Add flags for repair command
	integrityRepairCmd.Flags().Bool("dry-run", true, "Perform a dry-run without making actual changes")
	integrityRepairCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	integrityRepairCmd.Flags().String("max-risk", "low", "Highest risk level to apply (low, medium, high)")

	// Add subcommands
	integrityCmd.AddCommand(integrityAuditCmd)
	integrityCmd.AddCommand(integrityRepairCmd)
}

// newIntegrityService opens storage and builds the service for one CLI run.
func newIntegrityService() (*integrity.Service, *storage.Storage, error) {
	store, err := storage.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logger := log.New(os.Stdout, "[integrity] ", log.LstdFlags)
	svc, err := integrity.NewService(store, nil, logger)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create integrity service: %w", err)
	}
	return svc, store, nil
}

func runIntegrityAudit(cmd *cobra.Command, args []string) error {
	outputJSON, _ := cmd.Flags().GetBool("json")

	if !outputJSON {
		fmt.Println("🔍 Auditing the Allocation Database")
		fmt.Println()
	}

	svc, store, err := newIntegrityService()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	report, err := svc.Audit(ctx)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	// Output results
	if outputJSON {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonData))
	} else {
		// Human-readable output
		fmt.Printf("Audit ID:            %s\n", report.ID)
		fmt.Printf("Duration:            %v\n", report.Duration)
		fmt.Printf("Nodes Scanned:       %d\n", report.NodesScanned)
		fmt.Printf("Allocations Scanned: %d\n", report.AllocationsScanned)
		fmt.Printf("Workloads Scanned:   %d\n", report.WorkloadsScanned)
		fmt.Printf("Issues Found:        %d\n", report.Summary.TotalIssues)
		fmt.Println()

		// Health score with color
		scoreColor := getScoreColor(report.Summary.HealthScore)
		fmt.Printf("Health Score:        %s%d/100%s\n", scoreColor, report.Summary.HealthScore, colorReset)
		fmt.Println()

		// Issues by type
		if len(report.Summary.ByType) > 0 {
			fmt.Println("Issues by Type:")
			for issueType, count := range report.Summary.ByType {
				fmt.Printf("  %s: %d\n", issueType, count)
			}
			fmt.Println()
		}

		// Issues by severity
		if len(report.Summary.BySeverity) > 0 {
			fmt.Println("Issues by Severity:")
			for severity, count := range report.Summary.BySeverity {
				severityColor := getSeverityColor(severity)
				fmt.Printf("  %s%s%s: %d\n", severityColor, severity, colorReset, count)
			}
			fmt.Println()
		}

		// Detailed issues
		if len(report.Issues) > 0 {
			fmt.Println("Detailed Issues:")
			for i, issue := range report.Issues {
				if i >= 10 {
					fmt.Printf("  ... and %d more issues\n", len(report.Issues)-10)
					break
				}
				severityColor := getSeverityColor(issue.Severity)
				fmt.Printf("\n  Issue #%d:\n", i+1)
				fmt.Printf("    Type:        %s\n", issue.Type)
				fmt.Printf("    Severity:    %s%s%s\n", severityColor, issue.Severity, colorReset)
				fmt.Printf("    Subject ID:  %s\n", issue.SubjectID)
				fmt.Printf("    Description: %s\n", issue.Description)
				if issue.Repair != nil {
					riskColor := getRiskColor(issue.Repair.Risk)
					fmt.Printf("    Repair:      %s [%s%s%s]\n", issue.Repair.Action, riskColor, issue.Repair.Risk, colorReset)
				}
			}
			fmt.Println()
		}

		// Next steps
		if report.Summary.TotalIssues > 0 {
			fmt.Println("Next Steps:")
			fmt.Println("  1. Review the issues above")
			fmt.Println("  2. Run 'portico integrity repair --dry-run=true' to test")
			fmt.Println("  3. Run 'portico integrity repair --dry-run=false' to execute")
			fmt.Println()
		} else {
			fmt.Println("✅ No integrity issues found!")
			fmt.Println()
		}
	}

	// Exit with non-zero if issues found
	if report.Summary.TotalIssues > 0 {
		return fmt.Errorf("found %d integrity issues", report.Summary.TotalIssues)
	}

	return nil
}

func runIntegrityRepair(cmd *cobra.Command, args []string) error {
	// Get flags
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	maxRiskStr, _ := cmd.Flags().GetString("max-risk")

	if dryRun {
		fmt.Println("🔍 Dry-Run Mode: Simulating Repairs")
	} else {
		fmt.Println("⚠️  Live Mode: Executing Repairs")
	}
	fmt.Println()

	svc, store, err := newIntegrityService()
	if err != nil {
		return err
	}
	defer store.Close()

	// Audit first so the operator sees what the pass will touch
	ctx := context.Background()
	report, err := svc.Audit(ctx)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Printf("Found %d issue(s) to consider\n\n", report.Summary.TotalIssues)

	if report.Summary.TotalIssues == 0 {
		fmt.Println("✅ No repairs needed!")
		return nil
	}

	// Confirm before executing (unless --yes flag)
	if !dryRun && !skipConfirm {
		fmt.Printf("⚠️  WARNING: This will modify up to %d documents in the database!\n", report.Summary.TotalIssues)
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
		fmt.Println()
	}

	// Execute the pass
	result, err := svc.Repair(ctx, integrity.RepairOptions{
		DryRun:  dryRun,
		MaxRisk: integrity.RiskLevel(maxRiskStr),
	})
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	// Display results
	fmt.Println()
	fmt.Printf("Report ID:         %s\n", result.ReportID)
	fmt.Printf("Duration:          %v\n", result.Duration)
	fmt.Printf("Fixes:             %d total\n", len(result.Fixes))
	fmt.Printf("Fixed:             %s%d%s\n", colorGreen, result.Fixed, colorReset)
	fmt.Printf("Skipped:           %d\n", result.Skipped)
	fmt.Printf("Failed:            %s%d%s\n", colorRed, result.Failed, colorReset)
	fmt.Printf("Dry-Run:           %v\n", result.DryRun)
	fmt.Println()

	// Show failures if any
	if result.Failed > 0 {
		fmt.Println("Failed Fixes:")
		for i, fix := range result.Fixes {
			if fix.Error != "" {
				fmt.Printf("  %d. %s - %s\n", i+1, fix.Issue.SubjectID, fix.Error)
			}
		}
		fmt.Println()
	}

	// Summary
	if result.DryRun {
		fmt.Println("✅ Dry-run completed successfully!")
		fmt.Println("Run with --dry-run=false to execute actual repairs.")
	} else if result.Failed > 0 {
		return fmt.Errorf("%d fixes failed", result.Failed)
	} else {
		fmt.Println("✅ All repairs completed successfully!")
	}

	return nil
}

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
)

// getScoreColor returns the appropriate color for a health score
func getScoreColor(score int) string {
	if score >= 90 {
		return colorGreen
	} else if score >= 70 {
		return colorYellow
	} else if score >= 50 {
		return colorOrange
	}
	return colorRed
}

// getSeverityColor returns the appropriate color for a severity level
func getSeverityColor(severity integrity.Severity) string {
	switch severity {
	case integrity.SeverityHigh:
		return colorOrange
	case integrity.SeverityMedium:
		return colorYellow
	case integrity.SeverityLow:
		return colorGreen
	default:
		return colorReset
	}
}

// getRiskColor returns the appropriate color for a risk level
func getRiskColor(risk integrity.RiskLevel) string {
	switch risk {
	case integrity.RiskHigh:
		return colorRed
	case integrity.RiskMedium:
		return colorYellow
	case integrity.RiskLow:
		return colorGreen
	default:
		return colorReset
	}
}
