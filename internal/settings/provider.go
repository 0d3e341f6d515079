package settings

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const snapshotKey = "finance_snapshot"

// Loader reads the finance settings rows and folds them into one snapshot.
// Implemented by the gorm repository.
type Loader interface {
	LoadFinanceSnapshot(ctx context.Context) (*Snapshot, error)
}

// Source is what calculators depend on: the last successfully refreshed
// snapshot, never blocking on I/O when one is already cached.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Provider caches the finance snapshot with a TTL and reloads it lazily.
// Concurrent callers during a refresh share one reload; everyone else keeps
// reading the previous snapshot.
type Provider struct {
	loader Loader
	cache  *cache.Cache
	log    *zap.Logger

	mu   sync.Mutex
	last *Snapshot
}

func NewProvider(loader Loader, ttl time.Duration, log *zap.Logger) *Provider {
	return &Provider{
		loader: loader,
		cache:  cache.New(ttl, 2*ttl),
		log:    log,
	}
}

func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if v, ok := p.cache.Get(snapshotKey); ok {
		return v.(*Snapshot), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if v, ok := p.cache.Get(snapshotKey); ok {
		return v.(*Snapshot), nil
	}

	snap, err := p.loader.LoadFinanceSnapshot(ctx)
	if err != nil {
		if p.last != nil {
			// Serve stale rather than fail an in-flight calculation.
			p.log.Warn("finance settings refresh failed, serving stale snapshot", zap.Error(err))
			return p.last, nil
		}
		return nil, err
	}

	snap.RefreshedAt = time.Now().UTC()
	p.cache.SetDefault(snapshotKey, snap)
	p.last = snap
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read reloads. Called by
// the settings admin surface after a write.
func (p *Provider) Invalidate() {
	p.cache.Delete(snapshotKey)
}
