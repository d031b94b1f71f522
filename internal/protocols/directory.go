package protocols

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nvalverde/bridgescout/internal/model"
)

// Lister is the slice of the security data provider the directory needs.
type Lister interface {
	Protocols(ctx context.Context) ([]model.ProtocolEntry, error)
}

// Directory caches the security provider's full protocol list for the life
// of the process. The upstream endpoint is expensive, so the list is fetched
// at most once and then reused; staleness is accepted. The fetch runs outside
// the lock: concurrent first callers may fetch redundantly, which is cheaper
// than serializing every caller behind one network round-trip, and the
// content is idempotent so last-write-wins is safe.
type Directory struct {
	source Lister
	log    zerolog.Logger

	mu      sync.Mutex
	entries []model.ProtocolEntry
	loaded  bool
}

func NewDirectory(source Lister, log zerolog.Logger) *Directory {
	return &Directory{source: source, log: log}
}

// Entries returns the cached protocol list, fetching it on first use. A
// fetch failure is returned to the caller but does not poison the cache;
// the next call retries.
func (d *Directory) Entries(ctx context.Context) ([]model.ProtocolEntry, error) {
	d.mu.Lock()
	if d.loaded {
		entries := d.entries
		d.mu.Unlock()
		return entries, nil
	}
	d.mu.Unlock()

	entries, err := d.source.Protocols(ctx)
	if err != nil {
		return nil, err
	}
	d.log.Debug().Int("protocols", len(entries)).Msg("protocol directory populated")

	d.mu.Lock()
	d.entries = entries
	d.loaded = true
	d.mu.Unlock()
	return entries, nil
}

// Reset drops the cached list so the next Entries call refetches. This is
// the only invalidation path; nothing expires automatically.
func (d *Directory) Reset() {
	d.mu.Lock()
	d.entries = nil
	d.loaded = false
	d.mu.Unlock()
}
