package protocol

import "bytes"

// TrimToLastNewline returns the usable length of a chunk read: the
// count of leading bytes ending at the last newline in p, newline
// included. A read with no newline at all is usable in full, which
// covers the final fragment of a file and single overlong lines, and
// guarantees a non-empty read is never trimmed to nothing. The
// distributor applies this when sizing assignments and the worker
// applies it again to its own read, so both sides agree on where a
// chunk ends.
func TrimToLastNewline(p []byte) int {
	i := bytes.LastIndexByte(p, '\n')
	if i < 0 {
		return len(p)
	}
	return i + 1
}
