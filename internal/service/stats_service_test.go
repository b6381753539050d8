package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/storage"
)

type fakeCacheBackend struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func newFakeCacheBackend() *fakeCacheBackend {
	return &fakeCacheBackend{entries: make(map[string][]byte)}
}

func (f *fakeCacheBackend) Get(ctx context.Context, key string, dest interface{}) error {
	f.gets++
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheBackend) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheBackend) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func newStatsFixture(t *testing.T, cache *CacheService) (*StatsService, *FileService, *store.Memory) {
	t.Helper()
	uploads, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	st := store.NewMemory()
	return NewStatsService(st, uploads, cache, nil), NewFileService(st, uploads, nil, nil, 10<<20), st
}

func TestDashboardStats(t *testing.T) {
	stats, files, st := newStatsFixture(t, nil)
	user := fixtureUser(t, st, "me@example.com", models.RoleUser)
	admin := fixtureUser(t, st, "admin@example.com", models.RoleAdmin)

	first, err := files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	_, err = files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	_, err = st.ReviewFile(context.Background(), first.ID, models.FileStatusApproved, admin.ID, time.Now().UTC())
	require.NoError(t, err)

	chart := &models.Chart{UserID: user.ID, FileID: first.ID, Title: "Rev", Type: models.ChartTypeBar, XAxis: "region", YAxis: "revenue"}
	require.NoError(t, st.CreateChart(context.Background(), chart))

	got, err := stats.Dashboard(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalUploads)
	assert.Equal(t, 1, got.Approved)
	assert.Equal(t, 1, got.Pending)
	assert.Equal(t, 1, got.Charts)
}

func TestAdminStats(t *testing.T) {
	stats, files, st := newStatsFixture(t, nil)
	user := fixtureUser(t, st, "me@example.com", models.RoleUser)
	fixtureUser(t, st, "admin@example.com", models.RoleAdmin)

	_, err := files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	got, err := stats.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.ActiveUsers)
	assert.Equal(t, 1, got.MonthlyFiles)
	assert.Equal(t, 1, got.PendingApprovals)
	assert.Equal(t, 0, got.ChartsGenerated)
	assert.NotEmpty(t, got.StorageUsed)
}

func TestSuperadminStats(t *testing.T) {
	stats, files, st := newStatsFixture(t, nil)
	user := fixtureUser(t, st, "me@example.com", models.RoleUser)
	admin := fixtureUser(t, st, "admin@example.com", models.RoleAdmin)

	first, err := files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	_, err = files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	_, err = st.ReviewFile(context.Background(), first.ID, models.FileStatusRejected, admin.ID, time.Now().UTC())
	require.NoError(t, err)

	req := &models.AdminRequest{UserID: user.ID, Message: "please"}
	require.NoError(t, st.CreateAdminRequest(context.Background(), req))

	got, err := stats.Superadmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalUsers)
	assert.Equal(t, 1, got.PendingApprovals)
	assert.Equal(t, 1, got.FilesProcessed)
	assert.Equal(t, 1, got.AdminRequests)
}

func TestAdminStatsServedFromCache(t *testing.T) {
	backend := newFakeCacheBackend()
	cache := NewCacheService(backend, nil, time.Minute, nil)
	stats, files, st := newStatsFixture(t, cache)

	user := fixtureUser(t, st, "me@example.com", models.RoleUser)
	_, err := files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	first, err := stats.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, backend.sets)

	// A second upload is invisible until the cache entry expires.
	_, err = files.Upload(context.Background(), user, "sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)

	second, err := stats.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.MonthlyFiles, second.MonthlyFiles)
	assert.Equal(t, 1, backend.sets, "cached response must not be recomputed")
}

func TestCacheServiceDisabled(t *testing.T) {
	var cache *CacheService

	assert.False(t, cache.Enabled())
	assert.False(t, cache.Get(context.Background(), "k", &struct{}{}))
	cache.Set(context.Background(), "k", "v")
	cache.Invalidate(context.Background(), "k")
}
