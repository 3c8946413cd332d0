package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.temporal.io/api/enums/v1"
)

// Execution is one SettlePayout run, i.e. one delivery round of a payout
type Execution struct {
	WorkflowID string
	RunID      string
	Status     enums.WorkflowExecutionStatus
	StartTime  time.Time
	CloseTime  *time.Time
	Duration   time.Duration
}

// Report aggregates payout delivery rounds
type Report struct {
	Since      time.Time
	Truncated  bool
	Total      int
	Running    int
	Completed  int
	Failed     int
	Terminated int
	TimedOut   int
	Canceled   int
	// Rounds counts workflows per payout; payouts withdrawn again have more than one
	Rounds       map[string]int
	FirstStart   time.Time
	LastEnd      *time.Time
	P50          time.Duration
	P95          time.Duration
	Max          time.Duration
	LongestOpen  *Execution
	FailedRounds []Execution
}

// buildReport summarises executions. Latency percentiles only use closed runs.
func buildReport(executions []Execution, now time.Time) *Report {
	r := &Report{Rounds: make(map[string]int)}
	var durations []time.Duration

	for i := range executions {
		e := executions[i]
		r.Total++
		r.Rounds[payoutIDFromWorkflowID(e.WorkflowID)]++

		if r.FirstStart.IsZero() || e.StartTime.Before(r.FirstStart) {
			r.FirstStart = e.StartTime
		}
		if e.CloseTime != nil && (r.LastEnd == nil || e.CloseTime.After(*r.LastEnd)) {
			closeTime := *e.CloseTime
			r.LastEnd = &closeTime
		}

		switch e.Status {
		case enums.WORKFLOW_EXECUTION_STATUS_RUNNING:
			r.Running++
			if r.LongestOpen == nil || e.StartTime.Before(r.LongestOpen.StartTime) {
				open := e
				open.Duration = now.Sub(e.StartTime)
				r.LongestOpen = &open
			}
			continue
		case enums.WORKFLOW_EXECUTION_STATUS_COMPLETED:
			r.Completed++
		case enums.WORKFLOW_EXECUTION_STATUS_FAILED:
			r.Failed++
			r.FailedRounds = append(r.FailedRounds, e)
		case enums.WORKFLOW_EXECUTION_STATUS_TERMINATED:
			r.Terminated++
			r.FailedRounds = append(r.FailedRounds, e)
		case enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
			r.TimedOut++
			r.FailedRounds = append(r.FailedRounds, e)
		case enums.WORKFLOW_EXECUTION_STATUS_CANCELED:
			r.Canceled++
		}
		durations = append(durations, e.Duration)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	r.P50 = percentile(durations, 50)
	r.P95 = percentile(durations, 95)
	if len(durations) > 0 {
		r.Max = durations[len(durations)-1]
	}
	sort.Slice(r.FailedRounds, func(i, j int) bool {
		return r.FailedRounds[i].StartTime.Before(r.FailedRounds[j].StartTime)
	})

	return r
}

// percentile uses the nearest-rank method on sorted durations
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// payoutIDFromWorkflowID strips the round suffix of "payout-<id>-r<round>"
func payoutIDFromWorkflowID(workflowID string) string {
	id := strings.TrimPrefix(workflowID, "payout-")
	if i := strings.LastIndex(id, "-r"); i > 0 {
		return id[:i]
	}
	return id
}

// Payouts returns the number of distinct payouts and how many needed more than one round
func (r *Report) Payouts() (distinct int, retried int) {
	for _, rounds := range r.Rounds {
		distinct++
		if rounds > 1 {
			retried++
		}
	}
	return distinct, retried
}

func printReport(r *Report) {
	distinct, retried := r.Payouts()

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("Window start:   %s\n", r.Since.Format("2006-01-02 15:04:05"))
	if r.Truncated {
		fmt.Println("⚠️  Listing truncated at -max-workflows")
	}
	fmt.Println()
	fmt.Printf("Delivery rounds:\n")
	fmt.Printf("  Total:        %d\n", r.Total)
	fmt.Printf("  Completed:    %d (%s)\n", r.Completed, percentageString(r.Completed, r.Total))
	if r.Running > 0 {
		fmt.Printf("  Running:      %d\n", r.Running)
	}
	if r.Failed > 0 {
		fmt.Printf("  Failed:       %d (%s)\n", r.Failed, percentageString(r.Failed, r.Total))
	}
	if r.Terminated > 0 {
		fmt.Printf("  Terminated:   %d\n", r.Terminated)
	}
	if r.TimedOut > 0 {
		fmt.Printf("  Timed Out:    %d\n", r.TimedOut)
	}
	if r.Canceled > 0 {
		fmt.Printf("  Canceled:     %d\n", r.Canceled)
	}
	fmt.Println()
	fmt.Printf("Payouts:\n")
	fmt.Printf("  Distinct:     %d\n", distinct)
	fmt.Printf("  Re-withdrawn: %d\n", retried)
	fmt.Println()
	fmt.Printf("Latency (closed rounds):\n")
	fmt.Printf("  p50:          %s\n", formatDuration(r.P50))
	fmt.Printf("  p95:          %s\n", formatDuration(r.P95))
	fmt.Printf("  max:          %s\n", formatDuration(r.Max))
	if r.LastEnd != nil && r.Total > 0 {
		fmt.Printf("  Throughput:   %s\n", formatRate(r.Total-r.Running, r.LastEnd.Sub(r.FirstStart)))
	}
	if r.LongestOpen != nil {
		fmt.Printf("  Oldest open:  %s (%s)\n", r.LongestOpen.WorkflowID, formatDuration(r.LongestOpen.Duration))
	}

	if len(r.FailedRounds) > 0 {
		fmt.Println()
		fmt.Println("Failed rounds:")
		for _, e := range r.FailedRounds {
			fmt.Printf("  %s %s  %s\n", formatStatus(e.Status), e.WorkflowID, e.StartTime.Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Println(strings.Repeat("-", 80))
}

func formatStatus(status enums.WorkflowExecutionStatus) string {
	switch status {
	case enums.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "🟡 RUNNING"
	case enums.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "✅ COMPLETED"
	case enums.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "❌ FAILED"
	case enums.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "🚫 CANCELED"
	case enums.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "⛔ TERMINATED"
	case enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "⏱️ TIMED_OUT"
	default:
		return status.String()
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// writeMarkdownReport writes the report as a markdown file
func writeMarkdownReport(path string, r *Report, generated time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	distinct, retried := r.Payouts()

	_, _ = fmt.Fprintf(file, "# Payout Delivery Report\n\n")
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(file, "Window start: %s\n\n", r.Since.Format("2006-01-02 15:04:05"))
	if r.Truncated {
		_, _ = fmt.Fprintf(file, "> Listing truncated at -max-workflows\n\n")
	}

	_, _ = fmt.Fprintf(file, "## Delivery Rounds\n\n")
	_, _ = fmt.Fprintf(file, "| Metric | Count |\n")
	_, _ = fmt.Fprintf(file, "|--------|-------|\n")
	_, _ = fmt.Fprintf(file, "| **Total** | %d |\n", r.Total)
	_, _ = fmt.Fprintf(file, "| **Completed** | %d (%s) |\n", r.Completed, percentageString(r.Completed, r.Total))
	_, _ = fmt.Fprintf(file, "| **Running** | %d |\n", r.Running)
	_, _ = fmt.Fprintf(file, "| **Failed** | %d |\n", r.Failed)
	_, _ = fmt.Fprintf(file, "| **Terminated** | %d |\n", r.Terminated)
	_, _ = fmt.Fprintf(file, "| **Timed Out** | %d |\n", r.TimedOut)
	_, _ = fmt.Fprintf(file, "| **Canceled** | %d |\n", r.Canceled)
	_, _ = fmt.Fprintf(file, "| **Distinct payouts** | %d |\n", distinct)
	_, _ = fmt.Fprintf(file, "| **Re-withdrawn payouts** | %d |\n\n", retried)

	_, _ = fmt.Fprintf(file, "## Latency\n\n")
	_, _ = fmt.Fprintf(file, "| Percentile | Duration |\n")
	_, _ = fmt.Fprintf(file, "|------------|----------|\n")
	_, _ = fmt.Fprintf(file, "| p50 | %s |\n", formatDuration(r.P50))
	_, _ = fmt.Fprintf(file, "| p95 | %s |\n", formatDuration(r.P95))
	_, _ = fmt.Fprintf(file, "| max | %s |\n\n", formatDuration(r.Max))

	if len(r.FailedRounds) > 0 {
		_, _ = fmt.Fprintf(file, "## Failed Rounds\n\n")
		_, _ = fmt.Fprintf(file, "| Workflow ID | Status | Started |\n")
		_, _ = fmt.Fprintf(file, "|-------------|--------|---------|\n")
		for _, e := range r.FailedRounds {
			_, _ = fmt.Fprintf(file, "| `%s` | %s | %s |\n", e.WorkflowID, formatStatus(e.Status), e.StartTime.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}
