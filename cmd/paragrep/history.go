package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/Naty023/paragrep/internal/history"
)

// historyMain implements the "history" subcommand: list recorded runs,
// or dump one run's details and stored output.
func historyMain(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbPath := fs.String("db", "", "Path to the run history database")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	show := fs.String("show", "", "Print the stored details of the given run ID")
	fs.Parse(args)

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "history: -db is required")
		fs.Usage()
		os.Exit(2)
	}

	store, err := history.NewBboltStore(*dbPath)
	if err != nil {
		fatalf("Failed to open history database: %v", err)
	}
	defer store.Close()

	if *show != "" {
		showRun(store, *show)
		return
	}

	listRuns(store, *limit)
}

func listRuns(store history.Store, limit int) {
	runs, err := store.ListRuns(limit)
	if err != nil {
		fatalf("Failed to list runs: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return
	}

	fmt.Printf("%-36s %-20s %-8s %-10s %-8s %s\n", "RUN ID", "STARTED", "WORKERS", "BYTES", "MATCHES", "PATTERN")
	fmt.Println("────────────────────────────────────────────────────────────────────────────────────────────")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-8d %-10s %-8s %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Workers,
			humanize.Bytes(uint64(r.Bytes)),
			humanize.Comma(r.Matches),
			r.Pattern)
	}
}

func showRun(store history.Store, id string) {
	rec, err := store.GetRun(id)
	if err != nil {
		fatalf("Failed to load run %s: %v", id, err)
	}

	fmt.Printf("Run Details:\n")
	fmt.Printf("  ID:       %s\n", rec.ID)
	fmt.Printf("  Started:  %s\n", rec.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Pattern:  %s\n", rec.Pattern)
	fmt.Printf("  Input:    %s\n", rec.InputPath)
	fmt.Printf("  Workers:  %d\n", rec.Workers)
	fmt.Printf("  Chunks:   %d\n", rec.Chunks)
	fmt.Printf("  Bytes:    %s\n", humanize.Bytes(uint64(rec.Bytes)))
	fmt.Printf("  Matches:  %s\n", humanize.Comma(rec.Matches))
	fmt.Printf("  Duration: %v\n", rec.Duration)

	if len(rec.Output) > 0 {
		fmt.Printf("\nMatched output (%s):\n", humanize.Bytes(uint64(len(rec.Output))))
		os.Stdout.Write(rec.Output)
	}
}
