package coordinator

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Naty023/paragrep/internal/protocol"
)

// distributor owns the assignment cursor. It reads ahead from the input
// file to find the next chunk boundary and decides whether a requesting
// worker gets another byte range or the end signal.
type distributor struct {
	file       *os.File
	window     []byte
	nextOffset int64
	exhausted  bool
}

// newDistributor opens its own handle on the input file. The window
// size caps how many bytes a single assignment can cover.
func newDistributor(path string, windowSize int) (*distributor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	return &distributor{
		file:   file,
		window: make([]byte, windowSize),
	}, nil
}

// next produces the next assignment. The read-ahead is trimmed to the
// last newline in the window, so assigned ranges always end at a line
// boundary except possibly the final one. A zero-byte read marks end of
// input; from then on every call returns the end signal.
func (d *distributor) next() (protocol.Assignment, error) {
	if d.exhausted {
		return protocol.Assignment{End: true}, nil
	}

	n, err := d.file.ReadAt(d.window, d.nextOffset)
	if err != nil && err != io.EOF {
		return protocol.Assignment{}, fmt.Errorf("read ahead at offset %d: %w", d.nextOffset, err)
	}

	if n == 0 {
		d.exhausted = true
		log.Printf("[DISTRIBUTOR] End of input at offset %d", d.nextOffset)
		return protocol.Assignment{End: true}, nil
	}

	usable := protocol.TrimToLastNewline(d.window[:n])

	assignment := protocol.Assignment{
		FileOffset: d.nextOffset,
		MaxBytes:   usable,
	}
	d.nextOffset += int64(usable)

	return assignment, nil
}

// close releases the distributor's file handle.
func (d *distributor) close() error {
	return d.file.Close()
}
