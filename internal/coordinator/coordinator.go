// Package coordinator drives the parallel search: it hands byte ranges
// to a fixed pool of workers on demand, re-serializes their completions
// by file offset, extracts paragraph records from the sequenced stream,
// and writes the run log.
package coordinator

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/Naty023/paragrep/internal/history"
	"github.com/Naty023/paragrep/internal/protocol"
	"github.com/Naty023/paragrep/internal/worker"
	"github.com/Naty023/paragrep/pkg/bytebuf"
	"github.com/Naty023/paragrep/pkg/wordmatch"
)

const (
	// DefaultWindowSize is the read-ahead window and the upper bound on
	// a single assignment.
	DefaultWindowSize = 8192

	// MaxWorkers bounds the worker pool.
	MaxWorkers = 32
)

// handle tracks the coordinator-side state of one worker: its private
// assignment channel and whether the end signal went out already.
type handle struct {
	assign  chan protocol.Assignment
	endSent bool
}

// Config holds coordinator configuration.
type Config struct {
	Pattern     string
	InputPath   string
	Workers     int
	LogPath     string
	WindowSize  int       // read-ahead window; DefaultWindowSize when 0
	HistoryPath string    // bbolt run history database; empty disables history
	Progress    bool      // render a byte progress bar on stderr
	Stdout      io.Writer // matched records; defaults to os.Stdout
}

// Coordinator owns the dispatch loop and all sequencing state. Workers
// run as goroutines, but every coordinator field is touched only from
// Run, so no locking is needed.
type Coordinator struct {
	runID   string
	cfg     Config
	matcher *wordmatch.Matcher

	distributor *distributor
	pending     pendingSet
	carry       bytebuf.Buffer
	runlog      *runLog
	history     history.Store

	handles []*handle
	intake  chan protocol.Message

	out     io.Writer
	capture *bytes.Buffer // copy of matched output for the history record
	bar     *progressbar.ProgressBar

	nextOffsetToProcess int64
	chunksConsumed      int64
	bytesConsumed       int64
	matches             int64
}

// New validates the configuration and prepares a run. The pattern, the
// input file, and the log file are all checked here, before any worker
// starts.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Workers < 1 || cfg.Workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d (want 1 to %d)", ErrWorkerCount, cfg.Workers, MaxWorkers)
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.WindowSize < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", cfg.WindowSize)
	}

	matcher, err := wordmatch.Compile(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	dist, err := newDistributor(cfg.InputPath, cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	runlog, err := newRunLog(cfg.LogPath)
	if err != nil {
		dist.close()
		return nil, err
	}

	c := &Coordinator{
		runID:       uuid.New().String(),
		cfg:         cfg,
		matcher:     matcher,
		distributor: dist,
		runlog:      runlog,
		intake:      make(chan protocol.Message, cfg.Workers),
	}

	for i := 0; i < cfg.Workers; i++ {
		c.handles = append(c.handles, &handle{assign: make(chan protocol.Assignment, 1)})
	}

	c.out = cfg.Stdout
	if c.out == nil {
		c.out = os.Stdout
	}

	if cfg.HistoryPath != "" {
		store, err := history.NewBboltStore(cfg.HistoryPath)
		if err != nil {
			runlog.close()
			dist.close()
			return nil, fmt.Errorf("open run history: %w", err)
		}
		c.history = store
		c.capture = &bytes.Buffer{}
		c.out = io.MultiWriter(c.out, c.capture)
		log.Printf("[COORDINATOR] Run history enabled at %s", cfg.HistoryPath)
	} else {
		c.history = history.NewNoOpStore()
	}

	if cfg.Progress {
		info, err := dist.file.Stat()
		if err != nil {
			log.Printf("[COORDINATOR] Warning: Cannot size input for progress: %v", err)
		} else {
			c.bar = progressbar.DefaultBytes(info.Size(), "searching")
		}
	}

	return c, nil
}

// Run starts the workers and executes the dispatch loop to completion.
// Any worker failure or protocol violation aborts the run; output and
// log rows written before the failure remain valid prefixes.
func (c *Coordinator) Run() error {
	started := time.Now()
	log.Printf("[COORDINATOR] Run %s: pattern %q, %d workers, window %d",
		c.runID, c.matcher.Expr(), len(c.handles), c.cfg.WindowSize)

	for i, h := range c.handles {
		w, err := worker.New(worker.Config{
			ID:        i,
			InputPath: c.cfg.InputPath,
			Intake:    c.intake,
			Assign:    h.assign,
		})
		if err != nil {
			return fmt.Errorf("start worker %d: %w", i, err)
		}
		go w.Run()
	}

	live := len(c.handles)
	for live > 0 {
		msg := <-c.intake

		switch msg.Kind {
		case protocol.KindRequest:
			if err := c.handleRequest(msg.WorkerID); err != nil {
				return err
			}
		case protocol.KindResult:
			if err := c.handleResult(msg.Result); err != nil {
				return err
			}
		case protocol.KindExit:
			live--
			if err := c.handleExit(msg); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown message kind %q", ErrProtocol, msg.Kind)
		}
	}

	// All workers are gone. One final pass over anything still pending,
	// then the tail of the carry buffer becomes the last record.
	if err := c.drainReady(); err != nil {
		return err
	}
	if n := c.pending.size(); n > 0 {
		log.Printf("[COORDINATOR] Warning: %d chunks left unconsumable after drain", n)
	}

	matched, err := flushTail(&c.carry, c.matcher, c.out)
	if err != nil {
		return err
	}
	if matched {
		c.matches++
	}

	if c.bar != nil {
		c.bar.Finish()
	}

	elapsed := time.Since(started)
	log.Printf("[COORDINATOR] Run %s complete: %d chunks, %s consumed, %s matched records, %v",
		c.runID, c.chunksConsumed, humanize.Bytes(uint64(c.bytesConsumed)),
		humanize.Comma(c.matches), elapsed.Round(time.Millisecond))

	c.saveHistory(started, elapsed)

	return nil
}

// handleRequest answers a worker's demand for more work. Once the
// distributor reports end of input, each worker is told to stop exactly
// once.
func (c *Coordinator) handleRequest(workerID int) error {
	if workerID < 0 || workerID >= len(c.handles) {
		return fmt.Errorf("%w: request from unknown worker %d", ErrProtocol, workerID)
	}
	h := c.handles[workerID]

	assignment, err := c.distributor.next()
	if err != nil {
		return err
	}

	if assignment.End {
		if h.endSent {
			return nil
		}
		h.endSent = true
	}

	h.assign <- assignment
	return nil
}

// handleResult buffers a completed chunk and consumes every chunk that
// is now contiguous.
func (c *Coordinator) handleResult(r *protocol.Result) error {
	if r == nil {
		return fmt.Errorf("%w: result message without a result body", ErrProtocol)
	}

	c.pending.insert(r)
	return c.drainReady()
}

// handleExit accounts for one worker leaving the pool. An exit is legal
// only after that worker was sent the end signal.
func (c *Coordinator) handleExit(msg protocol.Message) error {
	if msg.Err != nil {
		return fmt.Errorf("worker %d failed: %w", msg.WorkerID, msg.Err)
	}
	if msg.WorkerID < 0 || msg.WorkerID >= len(c.handles) {
		return fmt.Errorf("%w: exit from unknown worker %d", ErrProtocol, msg.WorkerID)
	}
	if !c.handles[msg.WorkerID].endSent {
		return fmt.Errorf("%w: worker %d stopped before end of input", ErrWorkerExited, msg.WorkerID)
	}
	return nil
}

// drainReady folds contiguous pending chunks into the carry buffer in
// offset order. Each consumed chunk extracts whatever records it
// completed, gets one run log row, and advances the processing cursor.
func (c *Coordinator) drainReady() error {
	for {
		chunk := c.pending.popIfExpected(c.nextOffsetToProcess)
		if chunk == nil {
			return nil
		}

		c.carry.Append(chunk.Payload)

		matched, err := extractRecords(&c.carry, c.matcher, c.out)
		if err != nil {
			return err
		}
		c.matches += int64(matched)

		if err := c.runlog.add(chunk, matched > 0); err != nil {
			return err
		}

		c.nextOffsetToProcess = chunk.FileOffset + int64(chunk.ByteCount)
		c.chunksConsumed++
		c.bytesConsumed += int64(chunk.ByteCount)

		if c.bar != nil {
			c.bar.Add(chunk.ByteCount)
		}
	}
}

// saveHistory records the completed run. Persistence failures do not
// fail the run: the output and the log already exist.
func (c *Coordinator) saveHistory(started time.Time, elapsed time.Duration) {
	rec := &history.Record{
		ID:        c.runID,
		StartedAt: started,
		Pattern:   c.matcher.Expr(),
		InputPath: c.cfg.InputPath,
		Workers:   len(c.handles),
		Chunks:    c.chunksConsumed,
		Bytes:     c.bytesConsumed,
		Matches:   c.matches,
		Duration:  elapsed,
	}
	if c.capture != nil {
		rec.Output = c.capture.Bytes()
	}

	if err := c.history.SaveRun(rec); err != nil {
		log.Printf("[COORDINATOR] Warning: Failed to persist run: %v", err)
	}
}

// Close releases the run log, the distributor's file handle, and the
// history store.
func (c *Coordinator) Close() error {
	var firstErr error

	if err := c.runlog.close(); err != nil {
		firstErr = err
	}
	if err := c.distributor.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.history.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
