package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/storage"
)

var (
	// Query flags
	queryStatus     string
	queryNode       string
	queryDatacenter string
	queryFormat     string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the allocation database",
	Long:  `List and inspect nodes, allocations, and workloads straight from storage`,
}

var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List entities of a type (nodes, allocations, workloads)",
	Long: `List entities with optional filtering.

Examples:
  portico query list nodes
  portico query list nodes --datacenter eu-central
  portico query list allocations --node node:0f31a9c4
  portico query list workloads --status active
  portico query list workloads --node node:0f31a9c4 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var queryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fleet statistics",
	Long:  `Display aggregated statistics about nodes, allocations, and workloads.`,
	RunE:  runQueryStats,
}

func init() {
	queryCmd.AddCommand(listCmd)
	queryCmd.AddCommand(queryStatsCmd)

	// List command flags
	listCmd.Flags().StringVar(&queryStatus, "status", "", "filter workloads by status")
	listCmd.Flags().StringVar(&queryNode, "node", "", "filter by node ID")
	listCmd.Flags().StringVar(&queryDatacenter, "datacenter", "", "filter nodes by datacenter")
	listCmd.Flags().StringVar(&queryFormat, "format", "table", "output format (table, json)")

	// Stats command flags
	queryStatsCmd.Flags().StringVar(&queryFormat, "format", "table", "output format (table, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	entityType := args[0]

	// Initialize storage
	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(entityType) {
	case "nodes", "node":
		filters := make(map[string]string)
		if queryDatacenter != "" {
			filters["location"] = queryDatacenter
		}

		nodes, err := store.ListNodes(filters)
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}

		if queryFormat == "json" {
			return printJSON(nodes)
		}

		// Print table
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFQDN\tPORT\tONLINE\tDATACENTER")
		for _, n := range nodes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\n",
				n.ID, n.Name, n.FQDN, n.Port, n.Online, n.Datacenter)
		}
		w.Flush()
		fmt.Printf("\nTotal: %d nodes\n", len(nodes))

	case "allocations", "allocation":
		if queryNode == "" {
			return fmt.Errorf("--node is required when listing allocations")
		}

		allocations, err := store.ListAllocationsByNode(queryNode)
		if err != nil {
			return fmt.Errorf("failed to list allocations: %w", err)
		}

		// The assigned flag is a projection over the live workloads, not a
		// stored column
		workloads, err := store.ListWorkloadsByNode(queryNode)
		if err != nil {
			return fmt.Errorf("failed to list workloads: %w", err)
		}
		pool.Project(allocations, workloads)

		if queryFormat == "json" {
			return printJSON(allocations)
		}

		// Print table
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tBIND ADDRESS\tPORT\tASSIGNED\tALIAS")
		for _, a := range allocations {
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
				a.ID, a.BindAddress, a.Port, a.Assigned, a.Alias)
		}
		w.Flush()
		fmt.Printf("\nTotal: %d allocations\n", len(allocations))

	case "workloads", "workload":
		filters := make(map[string]string)
		if queryStatus != "" {
			filters["status"] = queryStatus
		}
		if queryNode != "" {
			filters["nodeId"] = queryNode
		}

		workloads, err := store.ListWorkloads(filters)
		if err != nil {
			return fmt.Errorf("failed to list workloads: %w", err)
		}

		if queryFormat == "json" {
			return printJSON(workloads)
		}

		// Print table
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tNODE\tBINDINGS")
		for _, wl := range workloads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				wl.ID, wl.Name, wl.Status, wl.NodeID, len(wl.Bindings))
		}
		w.Flush()
		fmt.Printf("\nTotal: %d workloads\n", len(workloads))

	default:
		return fmt.Errorf("unknown entity type: %s (use 'nodes', 'allocations', or 'workloads')", entityType)
	}

	return nil
}

func runQueryStats(cmd *cobra.Command, args []string) error {
	// Initialize storage
	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStatistics()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if queryFormat == "json" {
		return printJSON(stats)
	}

	fmt.Println("Fleet Statistics")
	fmt.Println("================")
	fmt.Printf("Nodes:                %d (%d online)\n", stats.TotalNodes, stats.OnlineNodes)
	fmt.Printf("Allocations:          %d (%d assigned)\n", stats.TotalAllocations, stats.AssignedAllocations)
	fmt.Printf("Workloads:            %d (%d active)\n", stats.TotalWorkloads, stats.ActiveWorkloads)
	fmt.Printf("Applied Plans:        %d\n", stats.AppliedPlans)

	if len(stats.NodeAllocationCounts) > 0 {
		fmt.Println("\nPool Sizes:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tALLOCATIONS\tWORKLOADS")
		for nodeID, count := range stats.NodeAllocationCounts {
			fmt.Fprintf(w, "%s\t%d\t%d\n", nodeID, count, stats.NodeWorkloadCounts[nodeID])
		}
		w.Flush()
	}

	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
