package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
)

// Memory keeps all entities in maps guarded by a single RWMutex. It backs the
// memory driver and, via snapshots, the JSON file driver.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	files    map[string]models.File
	charts   map[string]models.Chart
	requests map[string]models.AdminRequest
	audits   []models.AuditLog
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		files:    make(map[string]models.File),
		charts:   make(map[string]models.Chart),
		requests: make(map[string]models.AdminRequest),
	}
}

// CreateUser inserts a user, enforcing email uniqueness case-insensitively.
func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sortByTime(users, func(u models.User) (time.Time, string) { return u.CreatedAt, u.ID })
	return users, nil
}

func (m *Memory) UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user.Role = role
	m.users[id] = user
	return &user, nil
}

func (m *Memory) CreateFile(ctx context.Context, file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	if file.Status == "" {
		file.Status = models.FileStatusPending
	}
	m.files[file.ID] = *file
	return nil
}

func (m *Memory) GetFile(ctx context.Context, id string) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &file, nil
}

func (m *Memory) ListFilesByUser(ctx context.Context, userID string) ([]models.File, error) {
	return m.listFiles(func(f models.File) bool { return f.UserID == userID }), nil
}

func (m *Memory) ListAllFiles(ctx context.Context) ([]models.File, error) {
	return m.listFiles(func(models.File) bool { return true }), nil
}

func (m *Memory) ListPendingFiles(ctx context.Context) ([]models.File, error) {
	return m.listFiles(func(f models.File) bool { return f.Status == models.FileStatusPending }), nil
}

func (m *Memory) listFiles(keep func(models.File) bool) []models.File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]models.File, 0)
	for _, file := range m.files {
		if keep(file) {
			files = append(files, file)
		}
	}
	sortByTime(files, func(f models.File) (time.Time, string) { return f.UploadedAt, f.ID })
	return files
}

// ReviewFile applies the single allowed transition away from pending.
func (m *Memory) ReviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID string, at time.Time) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	if file.Status != models.FileStatusPending {
		return nil, ErrAlreadyReviewed
	}
	file.Status = status
	file.ApprovedBy = &reviewerID
	file.ApprovedAt = &at
	m.files[id] = file
	return &file, nil
}

func (m *Memory) CreateChart(ctx context.Context, chart *models.Chart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chart.ID == "" {
		chart.ID = uuid.NewString()
	}
	if chart.CreatedAt.IsZero() {
		chart.CreatedAt = time.Now().UTC()
	}
	m.charts[chart.ID] = *chart
	return nil
}

func (m *Memory) GetChart(ctx context.Context, id string) (*models.Chart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chart, ok := m.charts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &chart, nil
}

func (m *Memory) ListChartsByUser(ctx context.Context, userID string) ([]models.Chart, error) {
	return m.listCharts(func(c models.Chart) bool { return c.UserID == userID }), nil
}

func (m *Memory) ListChartsByFile(ctx context.Context, fileID string) ([]models.Chart, error) {
	return m.listCharts(func(c models.Chart) bool { return c.FileID == fileID }), nil
}

func (m *Memory) ListAllCharts(ctx context.Context) ([]models.Chart, error) {
	return m.listCharts(func(models.Chart) bool { return true }), nil
}

func (m *Memory) listCharts(keep func(models.Chart) bool) []models.Chart {
	m.mu.RLock()
	defer m.mu.RUnlock()

	charts := make([]models.Chart, 0)
	for _, chart := range m.charts {
		if keep(chart) {
			charts = append(charts, chart)
		}
	}
	sortByTime(charts, func(c models.Chart) (time.Time, string) { return c.CreatedAt, c.ID })
	return charts
}

func (m *Memory) CreateAdminRequest(ctx context.Context, req *models.AdminRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	if req.Status == "" {
		req.Status = models.AdminRequestPending
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *Memory) GetAdminRequest(ctx context.Context, id string) (*models.AdminRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &req, nil
}

func (m *Memory) ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := make([]models.AdminRequest, 0)
	for _, req := range m.requests {
		if req.Status == models.AdminRequestPending {
			requests = append(requests, req)
		}
	}
	sortByTime(requests, func(r models.AdminRequest) (time.Time, string) { return r.RequestedAt, r.ID })
	return requests, nil
}

// ApproveAdminRequest reviews the request and promotes the requester under
// one lock so no observer sees the request approved without the promotion.
func (m *Memory) ApproveAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != models.AdminRequestPending {
		return nil, ErrAlreadyReviewed
	}
	user, ok := m.users[req.UserID]
	if !ok {
		return nil, ErrNotFound
	}

	req.Status = models.AdminRequestApproved
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	user.Role = models.RoleAdmin

	m.requests[id] = req
	m.users[user.ID] = user
	return &req, nil
}

func (m *Memory) DenyAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != models.AdminRequestPending {
		return nil, ErrAlreadyReviewed
	}
	req.Status = models.AdminRequestDenied
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	m.requests[id] = req
	return &req, nil
}

func (m *Memory) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	m.audits = append(m.audits, *log)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func sortByTime[T any](items []T, key func(T) (time.Time, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}
