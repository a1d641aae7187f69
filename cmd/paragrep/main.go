// Command paragrep searches a text file for paragraphs matching a
// word-bounded pattern, fanning the reads out to a pool of workers.
//
// Usage:
//
//	paragrep [flags] <pattern> <input_file> <num_workers> <log_file>
//	paragrep history -db <file> [-limit n] [-show run-id]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/Naty023/paragrep/internal/coordinator"
)

const version = "1.0.0"

var (
	window      = flag.Int("window", coordinator.DefaultWindowSize, "Read-ahead window size in bytes (min 16)")
	historyPath = flag.String("history", "", "Record this run in a bbolt history database at the given path")
	progress    = flag.Bool("progress", false, "Render a progress bar on stderr")
	quiet       = flag.Bool("quiet", false, "Suppress lifecycle logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <pattern> <input_file> <num_workers> <log_file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s history -db <file> [-limit n] [-show run-id]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "history" {
		historyMain(os.Args[2:])
		return
	}

	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("paragrep %s\n", version)
		return
	}

	if flag.NArg() != 4 {
		usage()
		os.Exit(2)
	}

	workers, err := strconv.Atoi(flag.Arg(2))
	if err != nil {
		fatalf("Invalid worker count %q: %v", flag.Arg(2), err)
	}

	if *window < 16 {
		fatalf("Window size must be at least 16, got %d", *window)
	}

	if *quiet {
		log.SetOutput(io.Discard)
	}

	c, err := coordinator.New(coordinator.Config{
		Pattern:     flag.Arg(0),
		InputPath:   flag.Arg(1),
		Workers:     workers,
		LogPath:     flag.Arg(3),
		WindowSize:  *window,
		HistoryPath: *historyPath,
		Progress:    *progress,
	})
	if err != nil {
		if errors.Is(err, coordinator.ErrWorkerCount) {
			fmt.Fprintf(os.Stderr, "paragrep: %v\n\n", err)
			usage()
			os.Exit(2)
		}
		fatalf("%v", err)
	}

	runErr := c.Run()
	if err := c.Close(); err != nil {
		log.Printf("[MAIN] Warning: close: %v", err)
	}
	if runErr != nil {
		fatalf("%v", runErr)
	}
}

// fatalf reports on stderr and exits non-zero. It bypasses the log
// package so -quiet never swallows a fatal diagnostic.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "paragrep: "+format+"\n", args...)
	os.Exit(1)
}
