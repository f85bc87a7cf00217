package lattice

import "sync"

// Scratch buffers for the per-tick tree walks. Layout snapshots its
// counted children and the flush snapshots its dirty batch every tick;
// pooling keeps both walks allocation-free in steady state.

// maxScratchCap bounds what goes back in the pool, so one very wide node
// does not pin a huge buffer for every later walk.
const maxScratchCap = 128

var nodeScratch = sync.Pool{
	New: func() any { return make([]*Node, 0, 32) },
}

// acquireNodeSlice returns an empty scratch slice to append into. Hand it
// back with releaseNodeSlice when the walk is done.
func acquireNodeSlice() []*Node {
	return nodeScratch.Get().([]*Node)[:0]
}

// releaseNodeSlice nils out the entries and pools the slice, dropping
// oversized buffers for the collector instead.
func releaseNodeSlice(s []*Node) {
	for i := range s {
		s[i] = nil
	}
	if cap(s) <= maxScratchCap {
		nodeScratch.Put(s[:0])
	}
}
