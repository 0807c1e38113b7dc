package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vadapro/analyzer/pkg/cli"
	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/ledger/retention"
	"vadapro/analyzer/pkg/ledger/storage"
)

var usageFlags struct {
	user   string
	status string
	since  string
	until  string
	limit  int
	offset int
	format string
	prune  bool
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Report recorded usage",
	Long: `Query the usage ledger: one entry per executed analysis call with its
token counts, latency and outcome, followed by totals for the filter.

Examples:
  # Last 100 calls
  vadapro usage

  # One user's failures since May 1st
  vadapro usage --user alice --status error --since 2030-05-01T00:00:00Z

  # Export as CSV
  vadapro usage --format csv > usage.csv

  # Apply the retention policy now
  vadapro usage --prune`,
	RunE: reportUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVar(&usageFlags.user, "user", "", "filter by user ID")
	usageCmd.Flags().StringVar(&usageFlags.status, "status", "", "filter by status: success, error")
	usageCmd.Flags().StringVar(&usageFlags.since, "since", "", "only entries at or after this RFC3339 time")
	usageCmd.Flags().StringVar(&usageFlags.until, "until", "", "only entries at or before this RFC3339 time")
	usageCmd.Flags().IntVar(&usageFlags.limit, "limit", 100, "max entries")
	usageCmd.Flags().IntVar(&usageFlags.offset, "offset", 0, "pagination offset")
	usageCmd.Flags().StringVar(&usageFlags.format, "format", "text", "output format: text, json, csv")
	usageCmd.Flags().BoolVar(&usageFlags.prune, "prune", false, "delete entries older than ledger.retention.days and exit")
}

func reportUsage(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(usageFlags.format)
	if err != nil {
		return err
	}
	query, err := usageQuery()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(configPath(cmd))
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if !cfg.Ledger.IsEnabled() {
		return cli.NewCommandError("usage", errors.New("the usage ledger is disabled (ledger.enabled: false)"))
	}
	if cfg.Ledger.Backend == "memory" {
		return cli.NewCommandError("usage", errors.New("the memory ledger lives inside the running server; use GET /ai/usage/history"))
	}

	store, err := storage.Open(&cfg.Ledger)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if usageFlags.prune {
		deleted, err := retention.NewPruner(store, cfg.Ledger.Retention, nil).Prune(ctx)
		if err != nil {
			return cli.NewCommandError("usage", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d entries\n", deleted)
		return nil
	}

	report, err := buildUsageReport(ctx, store, query)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	return writeUsageReport(cmd.OutOrStdout(), format, report)
}

func usageQuery() (*ledger.Query, error) {
	q := &ledger.Query{
		UserID: usageFlags.user,
		Status: ledger.Status(usageFlags.status),
		Limit:  usageFlags.limit,
		Offset: usageFlags.offset,
	}
	switch q.Status {
	case "", ledger.StatusSuccess, ledger.StatusError:
	default:
		return nil, fmt.Errorf("invalid status %q (use success or error)", usageFlags.status)
	}

	for _, bound := range []struct {
		flag  string
		value string
		dst   **time.Time
	}{
		{"since", usageFlags.since, &q.StartTime},
		{"until", usageFlags.until, &q.EndTime},
	} {
		if bound.value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, bound.value)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", bound.flag, err)
		}
		*bound.dst = &t
	}
	return q, nil
}

// usageReport is the output of the usage command.
type usageReport struct {
	Entries []*ledger.Entry `json:"entries"`
	Total   int64           `json:"total"`
	Summary *ledger.Summary `json:"summary"`
}

func buildUsageReport(ctx context.Context, store ledger.Storage, q *ledger.Query) (*usageReport, error) {
	entries, err := store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := store.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	summary, err := store.Summarize(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*ledger.Entry{}
	}
	return &usageReport{Entries: entries, Total: total, Summary: summary}, nil
}

func (r *usageReport) Header() []string {
	return []string{"TIME", "USER", "MODEL", "STATUS", "QUEUED", "INPUT", "OUTPUT", "TOTAL", "LATENCY_MS"}
}

func (r *usageReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		status := string(e.Status)
		if e.ErrorType != "" {
			status += " (" + e.ErrorType + ")"
		}
		rows = append(rows, []string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UserID,
			e.Model,
			status,
			strconv.FormatBool(e.Queued),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.Itoa(e.TotalTokens),
			strconv.FormatInt(e.LatencyMs, 10),
		})
	}
	return rows
}

func writeUsageReport(w io.Writer, format cli.OutputFormat, report *usageReport) error {
	if err := cli.NewFormatter(format).FormatTo(w, report); err != nil {
		return err
	}
	if format != cli.FormatText {
		return nil
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "\nshowing %d of %d entries; %d requests, %d errors, %d tokens (%d in / %d out)\n",
		len(report.Entries), report.Total, s.Requests, s.Errors, s.TotalTokens, s.InputTokens, s.OutputTokens)
	return err
}
