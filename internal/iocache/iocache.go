// Package iocache is for caching portal I/O and tracking fetch runs.
package iocache

import (
	"sync"

	"github.com/growthlab/marshalgo/internal/contract"
)

// CacheStoreManager manages the response cache and fetch-log stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	fetchLog     contract.FetchStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCacheStore returns the portal response CacheStore.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetFetchStore returns the fetch-log FetchStore.
func (mgr *CacheStoreManager) GetFetchStore() contract.FetchStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.fetchLog
}
