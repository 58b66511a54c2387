package pipeline

import (
	"strings"
	"sync"
)

// builderPool reuses *strings.Builder instances across URL renders, the
// same pattern the teacher's pools.GlobalPools applies to its own
// per-record scratch buffers (CIDR strings, request slices).
var builderPool = sync.Pool{
	New: func() interface{} {
		b := &strings.Builder{}
		b.Grow(128)
		return b
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

// putBuilder returns b to the pool unless it has grown unreasonably large,
// mirroring the cap checks in pools.ReturnStringSlice and friends so one
// oversized template doesn't bloat the pool for every subsequent record.
func putBuilder(b *strings.Builder) {
	if b.Cap() < 8192 {
		builderPool.Put(b)
	}
}
