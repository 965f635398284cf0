package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/models"
)

// ErrCacheMiss returned when a key is not present in the mock cache
var ErrCacheMiss = errors.New("cache miss")

// MockSnapshotRepository implements repository.SnapshotRepository for testing
type MockSnapshotRepository struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
	loadErr  error
	loads    int
}

func NewMockSnapshotRepository(snap *models.Snapshot) *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshot: snap}
}

func (m *MockSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snapshot, nil
}

func (m *MockSnapshotRepository) SetSnapshot(snap *models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
}

func (m *MockSnapshotRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockSnapshotRepository) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// MockSnapshotSource implements service.SnapshotSource for testing
type MockSnapshotSource struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
}

func NewMockSnapshotSource(snap *models.Snapshot) *MockSnapshotSource {
	return &MockSnapshotSource{snapshot: snap}
}

func (m *MockSnapshotSource) Current() *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// MockMetricsCache implements repository.MetricsCache for testing
type MockMetricsCache struct {
	mu    sync.RWMutex
	cache map[string]*models.CampaignMetrics
	gets  int
	hits  int
}

func NewMockMetricsCache() *MockMetricsCache {
	return &MockMetricsCache{
		cache: make(map[string]*models.CampaignMetrics),
	}
}

func (m *MockMetricsCache) Get(ctx context.Context, key string) (*models.CampaignMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	metrics, exists := m.cache[key]
	if !exists {
		return nil, ErrCacheMiss
	}
	m.hits++
	return metrics, nil
}

func (m *MockMetricsCache) Set(ctx context.Context, key string, metrics *models.CampaignMetrics, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = metrics
	return nil
}

func (m *MockMetricsCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

func (m *MockMetricsCache) Hits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}

func (m *MockMetricsCache) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*models.CampaignMetrics)
	m.gets = 0
	m.hits = 0
}
