package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.temporal.io/api/enums/v1"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{
			name:     "milliseconds",
			duration: 500 * time.Millisecond,
			want:     "500ms",
		},
		{
			name:     "seconds",
			duration: 5 * time.Second,
			want:     "5.00s",
		},
		{
			name:     "minutes",
			duration: 2*time.Minute + 30*time.Second,
			want:     "2m 30s",
		},
		{
			name:     "hours",
			duration: 1*time.Hour + 15*time.Minute,
			want:     "1h 15m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		status enums.WorkflowExecutionStatus
		want   string
	}{
		{name: "running", status: enums.WORKFLOW_EXECUTION_STATUS_RUNNING, want: "🟡 RUNNING"},
		{name: "completed", status: enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, want: "✅ COMPLETED"},
		{name: "failed", status: enums.WORKFLOW_EXECUTION_STATUS_FAILED, want: "❌ FAILED"},
		{name: "timed out", status: enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT, want: "⏱️ TIMED_OUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStatus(tt.status)
			if got != tt.want {
				t.Errorf("formatStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentageString(t *testing.T) {
	tests := []struct {
		name  string
		part  int
		total int
		want  string
	}{
		{name: "zero total", part: 0, total: 0, want: "0.00%"},
		{name: "half", part: 50, total: 100, want: "50.00%"},
		{name: "third", part: 1, total: 3, want: "33.33%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentageString(tt.part, tt.total)
			if got != tt.want {
				t.Errorf("percentageString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	if got := formatRate(10, 0); got != "N/A" {
		t.Errorf("formatRate() = %v, want N/A", got)
	}
	if got := formatRate(10, 4*time.Second); got != "2.50/s" {
		t.Errorf("formatRate() = %v, want 2.50/s", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name string
		in   []time.Duration
		p    int
		want time.Duration
	}{
		{name: "empty", in: nil, p: 50, want: 0},
		{name: "p50", in: sorted, p: 50, want: 5},
		{name: "p95", in: sorted, p: 95, want: 10},
		{name: "p0 clamps to first", in: sorted, p: 0, want: 1},
		{name: "single", in: []time.Duration{7}, p: 95, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentile(tt.in, tt.p)
			if got != tt.want {
				t.Errorf("percentile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPayoutIDFromWorkflowID(t *testing.T) {
	tests := []struct {
		workflowID string
		want       string
	}{
		{workflowID: "payout-01HV5Z3Q7J8K9M0N1P2R3S4T5V-r1", want: "01HV5Z3Q7J8K9M0N1P2R3S4T5V"},
		{workflowID: "payout-01HV5Z3Q7J8K9M0N1P2R3S4T5V-r12", want: "01HV5Z3Q7J8K9M0N1P2R3S4T5V"},
		{workflowID: "payout-legacy", want: "legacy"},
	}

	for _, tt := range tests {
		t.Run(tt.workflowID, func(t *testing.T) {
			got := payoutIDFromWorkflowID(tt.workflowID)
			if got != tt.want {
				t.Errorf("payoutIDFromWorkflowID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := "WorkflowType = 'SettlePayout' AND StartTime > '2024-03-01T12:00:00Z'"
	if got := buildQuery(since); got != want {
		t.Errorf("buildQuery() = %v, want %v", got, want)
	}
}

func closedAt(start time.Time, d time.Duration) *time.Time {
	end := start.Add(d)
	return &end
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)

	executions := []Execution{
		{WorkflowID: "payout-A-r1", Status: enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, StartTime: start, CloseTime: closedAt(start, 2*time.Second), Duration: 2 * time.Second},
		{WorkflowID: "payout-B-r1", Status: enums.WORKFLOW_EXECUTION_STATUS_FAILED, StartTime: start.Add(time.Minute), CloseTime: closedAt(start.Add(time.Minute), 10*time.Second), Duration: 10 * time.Second},
		{WorkflowID: "payout-B-r2", Status: enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, StartTime: start.Add(2 * time.Minute), CloseTime: closedAt(start.Add(2*time.Minute), 4*time.Second), Duration: 4 * time.Second},
		{WorkflowID: "payout-C-r1", Status: enums.WORKFLOW_EXECUTION_STATUS_RUNNING, StartTime: start.Add(30 * time.Minute)},
	}

	r := buildReport(executions, now)

	if r.Total != 4 || r.Completed != 2 || r.Failed != 1 || r.Running != 1 {
		t.Fatalf("unexpected counts: total=%d completed=%d failed=%d running=%d", r.Total, r.Completed, r.Failed, r.Running)
	}
	distinct, retried := r.Payouts()
	if distinct != 3 || retried != 1 {
		t.Errorf("Payouts() = (%d, %d), want (3, 1)", distinct, retried)
	}
	if r.P50 != 4*time.Second {
		t.Errorf("P50 = %v, want 4s", r.P50)
	}
	if r.Max != 10*time.Second {
		t.Errorf("Max = %v, want 10s", r.Max)
	}
	if !r.FirstStart.Equal(start) {
		t.Errorf("FirstStart = %v, want %v", r.FirstStart, start)
	}
	if r.LongestOpen == nil || r.LongestOpen.WorkflowID != "payout-C-r1" || r.LongestOpen.Duration != 30*time.Minute {
		t.Errorf("LongestOpen = %+v, want payout-C-r1 open for 30m", r.LongestOpen)
	}
	if len(r.FailedRounds) != 1 || r.FailedRounds[0].WorkflowID != "payout-B-r1" {
		t.Errorf("FailedRounds = %+v, want [payout-B-r1]", r.FailedRounds)
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	r := buildReport([]Execution{
		{WorkflowID: "payout-B-r1", Status: enums.WORKFLOW_EXECUTION_STATUS_TERMINATED, StartTime: start, CloseTime: closedAt(start, time.Second), Duration: time.Second},
	}, now)
	r.Since = start

	path := filepath.Join(t.TempDir(), "report.md")
	if err := writeMarkdownReport(path, r, now); err != nil {
		t.Fatalf("writeMarkdownReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"# Payout Delivery Report", "| **Terminated** | 1 |", "## Failed Rounds", "`payout-B-r1`"} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"temporal_host":"temporal:7233","namespace":"marketplace"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.TemporalHost != "temporal:7233" || cfg.Namespace != "marketplace" {
		t.Errorf("LoadConfig() = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
