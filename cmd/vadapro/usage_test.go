package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"vadapro/analyzer/pkg/cli"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/ledger/storage"
)

func seedLedger(t *testing.T) ledger.Storage {
	t.Helper()

	store := storage.NewMemoryStorage(100)
	base := time.Date(2030, time.May, 10, 9, 30, 0, 0, time.UTC)
	entries := []*ledger.Entry{
		{ID: "1", UserID: "alice", Model: "gemini-2.5-flash", Status: ledger.StatusSuccess, InputTokens: 1200, OutputTokens: 340, TotalTokens: 1540, LatencyMs: 812, CreatedAt: base},
		{ID: "2", UserID: "alice", Model: "gemini-2.5-flash", Status: ledger.StatusError, ErrorType: "SERVER_ERROR", Queued: true, CreatedAt: base.Add(time.Minute)},
		{ID: "3", UserID: "bob", Model: "gemini-2.5-flash", Status: ledger.StatusSuccess, InputTokens: 10, OutputTokens: 20, TotalTokens: 30, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := store.Store(context.Background(), e); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
	return store
}

func TestBuildUsageReport(t *testing.T) {
	store := seedLedger(t)

	report, err := buildUsageReport(context.Background(), store, &ledger.Query{UserID: "alice", Limit: 1})
	if err != nil {
		t.Fatalf("buildUsageReport() error = %v", err)
	}

	if len(report.Entries) != 1 || report.Entries[0].ID != "2" {
		t.Fatalf("entries = %+v, want only the newest alice entry", report.Entries)
	}
	if report.Total != 2 {
		t.Errorf("Total = %d, want 2", report.Total)
	}
	if report.Summary.TotalTokens != 1540 || report.Summary.Errors != 1 {
		t.Errorf("Summary = %+v", report.Summary)
	}
}

func TestWriteUsageReport(t *testing.T) {
	store := seedLedger(t)
	report, err := buildUsageReport(context.Background(), store, &ledger.Query{})
	if err != nil {
		t.Fatalf("buildUsageReport() error = %v", err)
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := writeUsageReport(buf, cli.FormatText, report); err != nil {
			t.Fatalf("writeUsageReport() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"TIME", "error (SERVER_ERROR)", "showing 3 of 3 entries; 3 requests, 1 errors, 1570 tokens"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := writeUsageReport(buf, cli.FormatCSV, report); err != nil {
			t.Fatalf("writeUsageReport() error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("got %d lines, want header and 3 rows:\n%s", len(lines), buf.String())
		}
		if lines[3] != "2030-05-10T09:30:00Z,alice,gemini-2.5-flash,success,false,1200,340,1540,812" {
			t.Errorf("oldest row = %q", lines[3])
		}
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := writeUsageReport(buf, cli.FormatJSON, report); err != nil {
			t.Fatalf("writeUsageReport() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"totalTokens": 1570`) {
			t.Errorf("json output missing summary:\n%s", buf.String())
		}
	})
}

func TestUsageQuery(t *testing.T) {
	orig := usageFlags
	defer func() { usageFlags = orig }()

	usageFlags.user = "alice"
	usageFlags.status = "error"
	usageFlags.since = "2030-05-01T00:00:00Z"
	usageFlags.limit = 10

	q, err := usageQuery()
	if err != nil {
		t.Fatalf("usageQuery() error = %v", err)
	}
	if q.UserID != "alice" || q.Status != ledger.StatusError || q.Limit != 10 {
		t.Errorf("query = %+v", q)
	}
	if q.StartTime == nil || !q.StartTime.Equal(time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartTime = %v", q.StartTime)
	}
	if q.EndTime != nil {
		t.Errorf("EndTime = %v, want nil", q.EndTime)
	}

	usageFlags.status = "pending"
	if _, err := usageQuery(); err == nil {
		t.Error("usageQuery() accepted an unknown status")
	}

	usageFlags.status = ""
	usageFlags.until = "tomorrow"
	if _, err := usageQuery(); err == nil {
		t.Error("usageQuery() accepted an invalid --until")
	}
}
