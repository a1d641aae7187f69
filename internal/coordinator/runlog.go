package coordinator

import (
	"fmt"
	"os"

	"github.com/Naty023/paragrep/internal/protocol"
)

// logHeader names the run log columns. The format is stable: tooling
// downstream parses it.
const logHeader = "process_id,file_offset,bytes_read,elapsed_time,found\n"

// runLog appends one CSV row per consumed chunk. Rows reach the file as
// soon as they are written, so the log is a valid prefix of the run
// even if the process dies mid-way.
type runLog struct {
	f *os.File
}

// newRunLog creates (or truncates) the log file and writes the header.
func newRunLog(path string) (*runLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if _, err := f.WriteString(logHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write log header: %w", err)
	}

	return &runLog{f: f}, nil
}

// add writes the row for one consumed chunk. Elapsed time is recorded
// in seconds with microsecond precision; found is 1 or 0.
func (l *runLog) add(r *protocol.Result, found bool) error {
	flag := 0
	if found {
		flag = 1
	}

	_, err := fmt.Fprintf(l.f, "%d,%d,%d,%.6f,%d\n",
		r.WorkerID, r.FileOffset, r.ByteCount, r.Elapsed.Seconds(), flag)
	if err != nil {
		return fmt.Errorf("write log entry: %w", err)
	}

	return nil
}

// close releases the log file.
func (l *runLog) close() error {
	return l.f.Close()
}
