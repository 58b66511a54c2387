package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
)

// Stats exposes a live view of the pipeline's progress for consumers that
// are not on the hot path, such as the TUI dashboard. It is safe to read
// concurrently with a running Driver. In-flight tracking uses a lock-free
// map (the same github.com/alphadose/haxmap the teacher's sliding window
// uses for its IP statistics) so readers never contend with the reaper.
type Stats struct {
	InFlight *haxmap.Map[uint64, time.Time]
	inFlight atomic.Int64
	Success  atomic.Int64
	Failure  atomic.Int64
}

// NewStats returns a ready-to-use Stats.
func NewStats() *Stats {
	return &Stats{InFlight: haxmap.New[uint64, time.Time]()}
}

func (s *Stats) markStart(id uint64) {
	s.InFlight.Set(id, time.Now())
	s.inFlight.Add(1)
}

func (s *Stats) markDone(id uint64) {
	s.InFlight.Del(id)
	s.inFlight.Add(-1)
}

// InFlightCount returns the number of requests currently awaiting a
// response.
func (s *Stats) InFlightCount() int {
	return int(s.inFlight.Load())
}

// StartedAt returns the time the in-flight request with the given id began,
// if it is still outstanding.
func (s *Stats) StartedAt(id uint64) (time.Time, bool) {
	return s.InFlight.Get(id)
}
