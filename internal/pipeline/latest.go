package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
)

// LatestBatch keeps the most recent batch in memory. It is a BatchLoader, so
// the HTTP layer can serve zones without a database.
type LatestBatch struct {
	mu    sync.RWMutex
	batch domain.ZoneBatch
	ok    bool
}

func (l *LatestBatch) LoadBatch(_ context.Context, batch domain.ZoneBatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batch = batch
	l.ok = true
	return nil
}

// Latest returns the last loaded batch, or domain.ErrNoBatch.
func (l *LatestBatch) Latest(_ context.Context) (domain.ZoneBatch, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.ok {
		return domain.ZoneBatch{}, domain.ErrNoBatch
	}
	return l.batch, nil
}
