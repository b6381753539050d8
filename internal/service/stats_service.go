package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/storage"
)

type statsStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListFilesByUser(ctx context.Context, userID string) ([]models.File, error)
	ListAllFiles(ctx context.Context) ([]models.File, error)
	ListPendingFiles(ctx context.Context) ([]models.File, error)
	ListChartsByUser(ctx context.Context, userID string) ([]models.Chart, error)
	ListAllCharts(ctx context.Context) ([]models.Chart, error)
	ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error)
}

// StatsService aggregates counters for the dashboard, admin and superadmin
// views, with an optional read-through cache in front of the role-wide ones.
type StatsService struct {
	store   statsStore
	uploads *storage.LocalStorage
	cache   *CacheService
	logger  *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(st statsStore, uploads *storage.LocalStorage, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{store: st, uploads: uploads, cache: cache, logger: logger}
}

// Dashboard summarises the caller's own uploads and charts.
func (s *StatsService) Dashboard(ctx context.Context, caller *models.User) (*models.DashboardStats, error) {
	files, err := s.store.ListFilesByUser(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate files")
	}
	charts, err := s.store.ListChartsByUser(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate charts")
	}

	stats := &models.DashboardStats{TotalUploads: len(files), Charts: len(charts)}
	for _, file := range files {
		switch file.Status {
		case models.FileStatusApproved:
			stats.Approved++
		case models.FileStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

// Admin summarises platform-wide activity for the approval queue view.
func (s *StatsService) Admin(ctx context.Context) (*models.AdminStats, error) {
	const cacheKey = "stats:admin"
	var cached models.AdminStats
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate users")
	}
	files, err := s.store.ListAllFiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate files")
	}
	charts, err := s.store.ListAllCharts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate charts")
	}

	stats := &models.AdminStats{
		ActiveUsers:     len(users),
		ChartsGenerated: len(charts),
		StorageUsed:     formatBytes(s.storageBytes(files)),
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	for _, file := range files {
		if file.UploadedAt.After(cutoff) {
			stats.MonthlyFiles++
		}
		if file.Status == models.FileStatusPending {
			stats.PendingApprovals++
		}
	}

	s.cache.Set(ctx, cacheKey, stats)
	return stats, nil
}

// Superadmin summarises the whole platform.
func (s *StatsService) Superadmin(ctx context.Context) (*models.SuperadminStats, error) {
	const cacheKey = "stats:superadmin"
	var cached models.SuperadminStats
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate users")
	}
	files, err := s.store.ListAllFiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate files")
	}
	requests, err := s.store.ListPendingAdminRequests(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate admin requests")
	}

	stats := &models.SuperadminStats{
		TotalUsers:    len(users),
		AdminRequests: len(requests),
	}
	for _, file := range files {
		if file.Status == models.FileStatusPending {
			stats.PendingApprovals++
		} else {
			stats.FilesProcessed++
		}
	}

	s.cache.Set(ctx, cacheKey, stats)
	return stats, nil
}

// storageBytes sums the on-disk size of stored uploads. Missing files are
// skipped; the figure is informational.
func (s *StatsService) storageBytes(files []models.File) int64 {
	if s.uploads == nil {
		return 0
	}
	var total int64
	for _, file := range files {
		info, err := os.Stat(s.uploads.Path(file.Filename))
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
