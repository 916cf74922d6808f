package store

import (
	"context"
	"time"

	"github.com/cschleiden/go-resume/internal/metrickeys"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/jellydator/ttlcache/v3"
)

// CachedStore keeps recently used records in memory in front of another store. Writes go to the
// inner store first.
type CachedStore struct {
	inner Store
	mc    metrics.Client
	c     *ttlcache.Cache[string, *Record]
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(inner Store, mc metrics.Client, size int, expiration time.Duration) *CachedStore {
	c := ttlcache.New(
		ttlcache.WithCapacity[string, *Record](uint64(size)),
		ttlcache.WithTTL[string, *Record](expiration),
	)

	c.OnEviction(func(ctx context.Context, er ttlcache.EvictionReason, i *ttlcache.Item[string, *Record]) {
		reason := ""
		switch er {
		case ttlcache.EvictionReasonExpired:
			reason = "expired"
		case ttlcache.EvictionReasonCapacityReached:
			reason = "capacity"
		case ttlcache.EvictionReasonDeleted:
			reason = "deleted"
		}

		mc.Counter(metrickeys.StoreCacheEviction, metrics.Tags{metrickeys.EvictionReason: reason}, 1)
	})

	return &CachedStore{
		inner: inner,
		mc:    mc,
		c:     c,
	}
}

func (cs *CachedStore) Get(ctx context.Context, physicalID string) (*Record, error) {
	if item := cs.c.Get(physicalID); item != nil {
		cs.mc.Counter(metrickeys.StoreCacheHit, metrics.Tags{}, 1)
		return item.Value().Clone(), nil
	}

	r, err := cs.inner.Get(ctx, physicalID)
	if err != nil {
		return nil, err
	}

	cs.set(r)

	return r.Clone(), nil
}

func (cs *CachedStore) Put(ctx context.Context, r *Record) error {
	if err := cs.inner.Put(ctx, r); err != nil {
		cs.c.Delete(r.PhysicalID)
		return err
	}

	cs.set(r)

	return nil
}

func (cs *CachedStore) Delete(ctx context.Context, physicalID string) error {
	cs.c.Delete(physicalID)

	cs.mc.Gauge(metrickeys.StoreCacheSize, metrics.Tags{}, int64(cs.c.Len()))

	return cs.inner.Delete(ctx, physicalID)
}

func (cs *CachedStore) List(ctx context.Context, count int) ([]*Record, error) {
	return cs.inner.List(ctx, count)
}

// StartEviction removes expired records until ctx is canceled.
func (cs *CachedStore) StartEviction(ctx context.Context) {
	go cs.c.Start()

	<-ctx.Done()

	cs.c.Stop()
}

func (cs *CachedStore) Close() error {
	cs.c.DeleteAll()

	return cs.inner.Close()
}

func (cs *CachedStore) set(r *Record) {
	cs.c.Set(r.PhysicalID, r.Clone(), ttlcache.DefaultTTL)

	cs.mc.Gauge(metrickeys.StoreCacheSize, metrics.Tags{}, int64(cs.c.Len()))
}
