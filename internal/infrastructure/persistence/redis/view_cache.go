package redis

import (
	"context"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
)

// ViewCache implements conduct.ViewCache on top of the generic Cache.
// Score views are keyed per student; invalidation drops the whole
// conduct namespace so no stale view survives a ledger mutation.
type ViewCache struct {
	cache *Cache
}

// NewViewCache creates a new ViewCache.
func NewViewCache(cache *Cache) *ViewCache {
	return &ViewCache{cache: cache}
}

// GetScoreView returns the cached score view for a student.
// Returns ErrCacheMiss when the view is not cached.
func (v *ViewCache) GetScoreView(ctx context.Context, studentID string) (*conduct.ScoreView, error) {
	var view conduct.ScoreView
	if err := v.cache.Get(ctx, ScoreViewKey(studentID), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SetScoreView caches a score view.
func (v *ViewCache) SetScoreView(ctx context.Context, view *conduct.ScoreView, ttl time.Duration) error {
	if view == nil {
		return ErrCacheNilValue
	}
	if ttl <= 0 {
		ttl = TTLScoreView
	}
	return v.cache.Set(ctx, ScoreViewKey(view.StudentID), view, ttl)
}

// GetRecordList returns the cached record list for a student.
func (v *ViewCache) GetRecordList(ctx context.Context, studentID string) ([]*conduct.ConductRecord, error) {
	var records []*conduct.ConductRecord
	if err := v.cache.Get(ctx, RecordListKey(studentID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SetRecordList caches a student's record list.
func (v *ViewCache) SetRecordList(ctx context.Context, studentID string, records []*conduct.ConductRecord, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLRecordList
	}
	return v.cache.Set(ctx, RecordListKey(studentID), records, ttl)
}

// InvalidateAll drops every cached conduct read view. The operation is
// idempotent; flushing an empty namespace succeeds.
func (v *ViewCache) InvalidateAll(ctx context.Context) error {
	return v.cache.DeleteByPattern(ctx, PrefixConduct+"*")
}
