// Package worker implements the chunk-reading side of the pipeline: a
// worker asks the coordinator for byte ranges, reads and trims each one
// against its own file handle, and reports timed results.
package worker

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Naty023/paragrep/internal/protocol"
)

// Config holds worker configuration.
type Config struct {
	ID        int
	InputPath string
	Intake    chan<- protocol.Message    // shared with all workers
	Assign    <-chan protocol.Assignment // owned by this worker
}

// Worker reads assigned byte ranges from its own handle on the input
// file. Each worker holds an independent read position, so no locking
// is needed between workers or with the coordinator.
type Worker struct {
	id     int
	file   *os.File
	intake chan<- protocol.Message
	assign <-chan protocol.Assignment
}

// New opens the input file and prepares a worker. The returned worker
// owns the file handle until Run finishes.
func New(cfg Config) (*Worker, error) {
	file, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	return &Worker{
		id:     cfg.ID,
		file:   file,
		intake: cfg.Intake,
		assign: cfg.Assign,
	}, nil
}

// Run executes the request/read/report loop until the coordinator
// signals end of input. The worker never has more than one outstanding
// request. Run always delivers a final exit message; a non-nil error on
// that message means the worker failed mid-chunk and the run cannot
// continue.
func (w *Worker) Run() {
	defer w.file.Close()

	chunks := 0
	for {
		w.intake <- protocol.Message{Kind: protocol.KindRequest, WorkerID: w.id}

		assignment := <-w.assign
		if assignment.End {
			break
		}

		result, err := w.readChunk(assignment)
		if err != nil {
			log.Printf("[WORKER:%d] Chunk at offset %d failed: %v", w.id, assignment.FileOffset, err)
			w.intake <- protocol.Message{Kind: protocol.KindExit, WorkerID: w.id, Err: err}
			return
		}

		w.intake <- protocol.Message{Kind: protocol.KindResult, WorkerID: w.id, Result: result}
		chunks++
	}

	log.Printf("[WORKER:%d] End of input received, exiting after %d chunks", w.id, chunks)
	w.intake <- protocol.Message{Kind: protocol.KindExit, WorkerID: w.id}
}

// readChunk reads the assigned range, trims it to the last complete
// line, and times the operation. A short read at end of file is normal;
// any other read failure is fatal to the worker.
func (w *Worker) readChunk(a protocol.Assignment) (*protocol.Result, error) {
	buf := make([]byte, a.MaxBytes)

	start := time.Now()
	n, err := w.file.ReadAt(buf, a.FileOffset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", a.MaxBytes, a.FileOffset, err)
	}

	usable := protocol.TrimToLastNewline(buf[:n])
	elapsed := time.Since(start)

	return &protocol.Result{
		WorkerID:   w.id,
		FileOffset: a.FileOffset,
		ByteCount:  usable,
		Elapsed:    elapsed,
		Payload:    buf[:usable],
	}, nil
}
