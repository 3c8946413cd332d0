package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.temporal.io/api/enums/v1"
	workflowpb "go.temporal.io/api/workflow/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
)

const (
	defaultTemporalHost = "localhost:7233"
	defaultNamespace    = "default"
	payoutWorkflowType  = "SettlePayout"
)

type Config struct {
	TemporalHost string
	Namespace    string
	Since        time.Duration // Report workflows started within this window
	MaxWorkflows int           // Maximum number of workflows to collect (0 = unlimited)
	QueryTimeout time.Duration // Timeout for each Temporal query
	OutputFile   string        // Output markdown file path (optional)
	PageSize     int           // Page size for Temporal queries
	Debug        bool
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		fmt.Printf("Error creating Temporal client: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	now := time.Now()
	fmt.Printf("Connected to Temporal at %s (namespace: %s)\n", cfg.TemporalHost, cfg.Namespace)
	fmt.Printf("Collecting %s workflows started since %s\n", payoutWorkflowType, now.Add(-cfg.Since).Format(time.RFC3339))

	executions, truncated, err := listPayoutWorkflows(ctx, c, cfg, now)
	if err != nil {
		fmt.Printf("\nError collecting workflows: %v\n", err)
		os.Exit(1)
	}

	report := buildReport(executions, now)
	report.Since = now.Add(-cfg.Since)
	report.Truncated = truncated

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("PAYOUT DELIVERY REPORT")
	fmt.Println(strings.Repeat("=", 80))
	printReport(report)

	if cfg.OutputFile != "" {
		if err := writeMarkdownReport(cfg.OutputFile, report, now); err != nil {
			fmt.Printf("\n⚠️  Warning: Failed to write markdown file: %v\n", err)
		} else {
			fmt.Printf("\n✓ Report written to: %s\n", cfg.OutputFile)
		}
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.TemporalHost, "temporal-host", defaultTemporalHost, "Temporal host address")
	flag.StringVar(&cfg.Namespace, "namespace", defaultNamespace, "Temporal namespace")
	flag.DurationVar(&cfg.Since, "since", 24*time.Hour, "Report payout workflows started within this window")
	flag.StringVar(&cfg.OutputFile, "output", "", "Output markdown file path (optional)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.IntVar(&cfg.MaxWorkflows, "max-workflows", 10000, "Maximum workflows to collect (0 = unlimited)")
	flag.IntVar(&cfg.PageSize, "page-size", 1000, "Page size for Temporal queries (max: 1000)")
	flag.DurationVar(&cfg.QueryTimeout, "query-timeout", 30*time.Second, "Timeout for each Temporal query")

	configFile := flag.String("config", "", "Path to config file (optional)")

	flag.Parse()

	if cfg.PageSize <= 0 || cfg.PageSize > 1000 {
		cfg.PageSize = 1000
	}
	if cfg.Since <= 0 {
		cfg.Since = 24 * time.Hour
	}

	// Load from config file if specified
	if *configFile != "" {
		fileCfg, err := LoadConfig(*configFile)
		if err != nil {
			fmt.Printf("Warning: failed to load config file: %v\n", err)
		} else {
			// Override with file values if not set via flags
			if cfg.TemporalHost == defaultTemporalHost && fileCfg.TemporalHost != "" {
				cfg.TemporalHost = fileCfg.TemporalHost
			}
			if cfg.Namespace == defaultNamespace && fileCfg.Namespace != "" {
				cfg.Namespace = fileCfg.Namespace
			}
		}
	}

	return cfg
}

// buildQuery returns the visibility query selecting payout workflows started after since
func buildQuery(since time.Time) string {
	return fmt.Sprintf("WorkflowType = '%s' AND StartTime > '%s'", payoutWorkflowType, since.UTC().Format(time.RFC3339))
}

// listPayoutWorkflows pages through the visibility store. The second return
// value reports whether MaxWorkflows cut the listing short.
func listPayoutWorkflows(ctx context.Context, c client.Client, cfg *Config, now time.Time) ([]Execution, bool, error) {
	query := buildQuery(now.Add(-cfg.Since))
	if cfg.Debug {
		fmt.Printf("[DEBUG] Query: %s\n", query)
	}

	var executions []Execution
	var pageToken []byte
	for {
		queryCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
		resp, err := c.ListWorkflow(queryCtx, &workflowservice.ListWorkflowExecutionsRequest{
			Namespace:     cfg.Namespace,
			Query:         query,
			PageSize:      int32(cfg.PageSize), //nolint:gosec,G115
			NextPageToken: pageToken,
		})
		cancel()
		if err != nil {
			if queryCtx.Err() == context.DeadlineExceeded {
				return nil, false, fmt.Errorf("timeout while listing workflows (timeout: %v). Try increasing -query-timeout", cfg.QueryTimeout)
			}
			return nil, false, fmt.Errorf("failed to list workflows: %w", err)
		}

		for _, info := range resp.Executions {
			executions = append(executions, toExecution(info, now))
			if cfg.MaxWorkflows > 0 && len(executions) >= cfg.MaxWorkflows {
				return executions, true, nil
			}
		}

		if cfg.Debug {
			fmt.Printf("[DEBUG] Collected %d workflows\n", len(executions))
		}

		pageToken = resp.NextPageToken
		if len(pageToken) == 0 {
			return executions, false, nil
		}
	}
}

func toExecution(info *workflowpb.WorkflowExecutionInfo, now time.Time) Execution {
	e := Execution{
		WorkflowID: info.GetExecution().GetWorkflowId(),
		RunID:      info.GetExecution().GetRunId(),
		Status:     info.GetStatus(),
		StartTime:  info.GetStartTime().AsTime(),
	}
	if info.GetCloseTime() != nil && info.GetStatus() != enums.WORKFLOW_EXECUTION_STATUS_RUNNING {
		closeTime := info.GetCloseTime().AsTime()
		e.CloseTime = &closeTime
		e.Duration = closeTime.Sub(e.StartTime)
	} else {
		e.Duration = now.Sub(e.StartTime)
	}
	return e
}
