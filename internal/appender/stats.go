package appender

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of the appender counters. Document counts are per
// document, so one bulk insert of ten events counts ten.
type Stats struct {
	Appended  int64
	Written   int64
	Failed    int64
	Dropped   int64
	StartTime time.Time
	LastWrite time.Time
}

// Pending returns documents accepted but not yet written, failed or dropped.
func (s Stats) Pending() int64 {
	return s.Appended - s.Written - s.Failed - s.Dropped
}

type counters struct {
	appended  atomic.Int64
	written   atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
	startTime atomic.Int64
	lastWrite atomic.Int64
}

func (c *counters) start(t time.Time) {
	c.startTime.Store(t.UnixNano())
}

// Stats returns the current counters.
func (a *Appender) Stats() Stats {
	s := Stats{
		Appended:  a.stats.appended.Load(),
		Written:   a.stats.written.Load(),
		Failed:    a.stats.failed.Load(),
		Dropped:   a.stats.dropped.Load(),
		StartTime: time.Unix(0, a.stats.startTime.Load()),
	}
	if ns := a.stats.lastWrite.Load(); ns != 0 {
		s.LastWrite = time.Unix(0, ns)
	}
	return s
}
