// Package iocache is for caching harvest I/O and persisting report history.
package iocache

import (
	"sync"

	"github.com/huangsam/devpulse/internal/contract"
)

// StoreManager holds the activity cache and the report store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	report       contract.ReportStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetActivityStore returns the activity CacheStore.
func (mgr *StoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetReportStore returns the ReportStore.
func (mgr *StoreManager) GetReportStore() contract.ReportStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.report
}
