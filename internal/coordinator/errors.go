package coordinator

import "errors"

// Sentinel errors for fatal run conditions
var (
	// ErrWorkerCount reports a worker count outside [1, MaxWorkers].
	ErrWorkerCount = errors.New("worker count out of range")

	// ErrWorkerExited reports a worker that stopped before the
	// coordinator sent it the end signal. The pipeline has no retry
	// path, so this ends the run.
	ErrWorkerExited = errors.New("worker exited unexpectedly")

	// ErrProtocol reports a malformed message on the intake channel.
	ErrProtocol = errors.New("protocol violation")
)
