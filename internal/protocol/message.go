// Package protocol defines the messages exchanged between the
// coordinator and its workers, plus the chunk-trimming policy both
// sides apply.
package protocol

import "time"

// Kind identifies a worker-to-coordinator message.
type Kind string

const (
	// KindRequest asks the coordinator for the next byte range.
	KindRequest Kind = "request"
	// KindResult delivers one completed chunk.
	KindResult Kind = "result"
	// KindExit announces that the worker has stopped. An Err on the
	// message means the worker failed mid-run.
	KindExit Kind = "exit"
)

// Result carries one completed chunk back to the coordinator. ByteCount
// and Payload reflect the trimmed read, not the assigned maximum.
type Result struct {
	WorkerID   int
	FileOffset int64
	ByteCount  int
	Elapsed    time.Duration
	Payload    []byte
}

// Message is the union received on the coordinator's intake channel.
// Result is set only for KindResult; Err only for a failed KindExit.
type Message struct {
	Kind     Kind
	WorkerID int
	Result   *Result
	Err      error
}

// Assignment is the coordinator's reply to a work request. End tells
// the worker to exit; otherwise the worker reads up to MaxBytes
// starting at FileOffset.
type Assignment struct {
	End        bool
	FileOffset int64
	MaxBytes   int
}
