package coordinator

import (
	"golang.org/x/exp/slices"

	"github.com/Naty023/paragrep/internal/protocol"
)

// pendingSet holds chunks that have completed but cannot be consumed
// yet, ordered by ascending file offset. Workers finish in arbitrary
// order; the set re-serializes them.
type pendingSet struct {
	chunks []*protocol.Result
}

// insert places r in offset order. Offsets are unique by construction:
// the distributor hands out each range exactly once.
func (p *pendingSet) insert(r *protocol.Result) {
	i := slices.IndexFunc(p.chunks, func(c *protocol.Result) bool {
		return c.FileOffset > r.FileOffset
	})
	if i < 0 {
		p.chunks = append(p.chunks, r)
		return
	}
	p.chunks = slices.Insert(p.chunks, i, r)
}

// popIfExpected removes and returns the front chunk only when its
// offset equals expected; otherwise it returns nil and the set is left
// unchanged.
func (p *pendingSet) popIfExpected(expected int64) *protocol.Result {
	if len(p.chunks) == 0 || p.chunks[0].FileOffset != expected {
		return nil
	}

	r := p.chunks[0]
	p.chunks = p.chunks[1:]
	return r
}

// size returns the number of buffered chunks.
func (p *pendingSet) size() int {
	return len(p.chunks)
}
