package metrics

import "github.com/puzpuzpuz/xsync/v3"

// Counters tracks resolver events. All methods are safe for concurrent use.
type Counters struct {
	hits          *xsync.Counter
	misses        *xsync.Counter
	activations   *xsync.Counter
	writes        *xsync.Counter
	skippedDrafts *xsync.Counter
	cancelled     *xsync.Counter
	storeFailures *xsync.Counter
}

// Snapshot is a point in time copy of Counters.
type Snapshot struct {
	Hits          int64
	Misses        int64
	Activations   int64
	Writes        int64
	SkippedDrafts int64
	Cancelled     int64
	StoreFailures int64
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{
		hits:          xsync.NewCounter(),
		misses:        xsync.NewCounter(),
		activations:   xsync.NewCounter(),
		writes:        xsync.NewCounter(),
		skippedDrafts: xsync.NewCounter(),
		cancelled:     xsync.NewCounter(),
		storeFailures: xsync.NewCounter(),
	}
}

func (c *Counters) Hit()          { c.hits.Inc() }
func (c *Counters) Miss()         { c.misses.Inc() }
func (c *Counters) Activation()   { c.activations.Inc() }
func (c *Counters) Write()        { c.writes.Inc() }
func (c *Counters) SkippedDraft() { c.skippedDrafts.Inc() }
func (c *Counters) Cancelled()    { c.cancelled.Inc() }
func (c *Counters) StoreFailure() { c.storeFailures.Inc() }

// Snapshot returns the current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Hits:          c.hits.Value(),
		Misses:        c.misses.Value(),
		Activations:   c.activations.Value(),
		Writes:        c.writes.Value(),
		SkippedDrafts: c.skippedDrafts.Value(),
		Cancelled:     c.cancelled.Value(),
		StoreFailures: c.storeFailures.Value(),
	}
}
