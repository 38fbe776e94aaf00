package iocache

import (
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCacheStore implements the CacheManager interface.
func (m *MockCacheManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetFetchStore implements the CacheManager interface.
func (m *MockCacheManager) GetFetchStore() contract.FetchStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.FetchStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockFetchStore is a mock implementation of FetchStore for testing.
type MockFetchStore struct {
	mock.Mock
}

var _ contract.FetchStore = &MockFetchStore{} // Compile-time check

// BeginFetch implements the FetchStore interface.
func (m *MockFetchStore) BeginFetch(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordSourceFetch implements the FetchStore interface.
func (m *MockFetchStore) RecordSourceFetch(runID int64, outcome schema.FetchOutcome) error {
	args := m.Called(runID, outcome)
	return args.Error(0)
}

// EndFetch implements the FetchStore interface.
func (m *MockFetchStore) EndFetch(runID int64, endTime time.Time, succeeded, failed int) error {
	args := m.Called(runID, endTime, succeeded, failed)
	return args.Error(0)
}

// GetStatus implements the FetchStore interface.
func (m *MockFetchStore) GetStatus() (schema.FetchLogStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.FetchLogStatus), args.Error(1)
}

// GetAllRuns implements the FetchStore interface.
func (m *MockFetchStore) GetAllRuns() ([]schema.FetchRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.FetchRunRecord)
	return runs, args.Error(1)
}

// GetAllSourceFetches implements the FetchStore interface.
func (m *MockFetchStore) GetAllSourceFetches() ([]schema.SourceFetchRecord, error) {
	args := m.Called()
	fetches, _ := args.Get(0).([]schema.SourceFetchRecord)
	return fetches, args.Error(1)
}

// Close implements the FetchStore interface.
func (m *MockFetchStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
