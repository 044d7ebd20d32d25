// Command history-export writes all settled (non-open) tabs from the
// snapshot store to a gzipped JSON file, for bookkeeping outside the
// running service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sort"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/bartab/internal/domain/tab"
	filestore "github.com/xenking/bartab/internal/storage/file"
	"github.com/xenking/bartab/internal/storage/postgres"
)

// exportRecord is one settled tab plus its derived total, so the export
// is self-contained for accounting.
type exportRecord struct {
	tab.Tab
	Total decimal.Decimal `json:"total"`
}

func main() {
	var (
		snapshotPath string
		databaseURL  string
		outPath      string
	)

	flag.StringVar(&snapshotPath, "snapshot-path", "data/bar_tabs.json", "snapshot file path (file backend)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outPath, "out", "history.json.gz", "output file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var snap tab.Snapshotter
	if databaseURL != "" {
		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			slog.Error("connect database", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		snap = postgres.NewSnapshotStore(pool)
	} else {
		snap = filestore.New(snapshotPath)
	}

	tabs, err := snap.Load(ctx)
	if err != nil {
		slog.Error("load snapshot", "err", err)
		os.Exit(1)
	}

	records := make([]exportRecord, 0, len(tabs))
	for _, t := range tabs {
		if t.Status == tab.StatusOpen {
			continue
		}
		records = append(records, exportRecord{Tab: t, Total: t.Total().Round(2)})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ClosedAt > records[j].ClosedAt
	})

	out, err := os.Create(outPath)
	if err != nil {
		slog.Error("create output", "err", err)
		os.Exit(1)
	}

	gz := pgzip.NewWriter(out)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		slog.Error("encode export", "err", err)
		os.Exit(1)
	}
	if err := gz.Close(); err != nil {
		slog.Error("close gzip stream", "err", err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		slog.Error("close output", "err", err)
		os.Exit(1)
	}

	slog.Info("export complete", "tabs", len(records), "out", outPath)
}
