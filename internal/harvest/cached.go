package harvest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// currentCacheVersion defines the version of the cached activity layout.
const currentCacheVersion = 1

// CachedHarvester serves repeated windows from a CacheStore. Cache failures
// never fail a fetch.
type CachedHarvester struct {
	inner  contract.Harvester
	store  contract.CacheStore
	source string
	ttl    time.Duration
	now    func() time.Time
}

var _ contract.Harvester = &CachedHarvester{} // Compile-time check

// NewCachedHarvester wraps inner. source identifies what inner reads from.
// A non-positive ttl uses contract.DefaultCacheTTL.
func NewCachedHarvester(inner contract.Harvester, store contract.CacheStore, source string, ttl time.Duration) *CachedHarvester {
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	return &CachedHarvester{inner: inner, store: store, source: source, ttl: ttl, now: time.Now}
}

// Fetch implements the Harvester interface.
func (h *CachedHarvester) Fetch(ctx context.Context, windowStart, windowEnd time.Time) (schema.Activity, error) {
	key := CacheKey(h.source, windowStart, windowEnd)
	if activity, ok := h.lookup(key); ok {
		contract.Logger.WithField("cache_key", key[:12]).Debug("Activity cache hit")
		return clipToWindow(activity, windowStart, windowEnd), nil
	}

	activity, err := h.inner.Fetch(ctx, windowStart, windowEnd)
	if err != nil {
		return schema.Activity{}, err
	}

	data, err := json.Marshal(activity)
	if err != nil {
		contract.LogWarn("Failed to encode activity for cache", err)
		return activity, nil
	}
	if err := h.store.Set(key, data, currentCacheVersion, h.now().Unix()); err != nil {
		contract.LogWarn("Failed to write activity cache", err)
	}
	return activity, nil
}

// lookup returns a cached entry that matches the current version and is
// within the TTL.
func (h *CachedHarvester) lookup(key string) (schema.Activity, bool) {
	data, version, ts, err := h.store.Get(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			contract.LogWarn("Failed to read activity cache", err)
		}
		return schema.Activity{}, false
	}
	if version != currentCacheVersion || h.now().Sub(time.Unix(ts, 0)) > h.ttl {
		return schema.Activity{}, false
	}
	var activity schema.Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return schema.Activity{}, false
	}
	return activity, true
}

// clipToWindow drops records an entry keyed on the hour carries from
// outside [windowStart, windowEnd].
func clipToWindow(activity schema.Activity, windowStart, windowEnd time.Time) schema.Activity {
	inWindow := func(t time.Time) bool {
		return !t.Before(windowStart) && !t.After(windowEnd)
	}
	clipped := schema.Activity{
		Commits:      make([]schema.CommitRecord, 0, len(activity.Commits)),
		PullRequests: make([]schema.PullRequestRecord, 0, len(activity.PullRequests)),
	}
	for _, c := range activity.Commits {
		if inWindow(c.Timestamp) {
			clipped.Commits = append(clipped.Commits, c)
		}
	}
	for _, pr := range activity.PullRequests {
		if inWindow(pr.CreatedAt) {
			clipped.PullRequests = append(clipped.PullRequests, pr)
		}
	}
	return clipped
}

// CacheKey hashes the source with the window truncated to the hour so that
// runs within the same hour share an entry.
func CacheKey(source string, windowStart, windowEnd time.Time) string {
	raw := fmt.Sprintf("%s:%d:%d",
		source,
		windowStart.Truncate(contract.CacheGranularity).Unix(),
		windowEnd.Truncate(contract.CacheGranularity).Unix(),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}
