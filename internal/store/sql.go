package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
)

// SQL implements Store on top of sqlx for both PostgreSQL and MySQL.
// Queries are written with ? placeholders and rebound per dialect.
type SQL struct {
	db      *sqlx.DB
	dialect string
}

// NewSQL wraps the connection and creates missing tables.
func NewSQL(db *sqlx.DB, dialect string) (*SQL, error) {
	s := &SQL{db: db, dialect: dialect}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQL) ensureSchema(ctx context.Context) error {
	var stmts []string
	if s.dialect == config.DriverMySQL {
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(36) PRIMARY KEY,
				email VARCHAR(255) NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				name TEXT NOT NULL,
				role VARCHAR(32) NOT NULL DEFAULT 'user',
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS files (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				filename TEXT NOT NULL,
				original_name TEXT NOT NULL,
				storage_path TEXT NOT NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'pending',
				data JSON,
				uploaded_at DATETIME NOT NULL,
				approved_by VARCHAR(36),
				approved_at DATETIME
			)`,
			`CREATE TABLE IF NOT EXISTS charts (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				file_id VARCHAR(36) NOT NULL,
				title TEXT NOT NULL,
				type VARCHAR(32) NOT NULL,
				x_axis TEXT NOT NULL,
				y_axis TEXT NOT NULL,
				config JSON,
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS admin_requests (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				message TEXT NOT NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'pending',
				requested_at DATETIME NOT NULL,
				reviewed_by VARCHAR(36),
				reviewed_at DATETIME
			)`,
			`CREATE TABLE IF NOT EXISTS audit_logs (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36),
				action VARCHAR(64) NOT NULL,
				resource VARCHAR(64) NOT NULL,
				resource_id VARCHAR(36),
				detail BLOB,
				ip_address VARCHAR(64) NOT NULL DEFAULT '',
				user_agent TEXT,
				created_at DATETIME NOT NULL
			)`,
		}
	} else {
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(36) PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				name TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'user',
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS files (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				filename TEXT NOT NULL,
				original_name TEXT NOT NULL,
				storage_path TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				data JSONB,
				uploaded_at TIMESTAMPTZ NOT NULL,
				approved_by VARCHAR(36),
				approved_at TIMESTAMPTZ
			)`,
			`CREATE TABLE IF NOT EXISTS charts (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				file_id VARCHAR(36) NOT NULL,
				title TEXT NOT NULL,
				type TEXT NOT NULL,
				x_axis TEXT NOT NULL,
				y_axis TEXT NOT NULL,
				config JSONB,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS admin_requests (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				message TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				requested_at TIMESTAMPTZ NOT NULL,
				reviewed_by VARCHAR(36),
				reviewed_at TIMESTAMPTZ
			)`,
			`CREATE TABLE IF NOT EXISTS audit_logs (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36),
				action TEXT NOT NULL,
				resource TEXT NOT NULL,
				resource_id VARCHAR(36),
				detail BYTEA,
				ip_address TEXT NOT NULL DEFAULT '',
				user_agent TEXT,
				created_at TIMESTAMPTZ NOT NULL
			)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const userColumns = `id, email, password_hash, name, role, created_at`

func (s *SQL) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	var exists int
	query := s.db.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`)
	if err := s.db.GetContext(ctx, &exists, query, user.Email); err != nil {
		return fmt.Errorf("check email uniqueness: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateEmail
	}

	const insert = `INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES (:id, :email, :password_hash, :name, :role, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, insert, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQL) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *SQL) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER(?)`)
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *SQL) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	users := make([]models.User, 0)
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *SQL) UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	query := s.db.Rebind(`UPDATE users SET role = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

const fileColumns = `id, user_id, filename, original_name, storage_path, status, data, uploaded_at, approved_by, approved_at`

func (s *SQL) CreateFile(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	if file.Status == "" {
		file.Status = models.FileStatusPending
	}

	const insert = `INSERT INTO files (id, user_id, filename, original_name, storage_path, status, data, uploaded_at, approved_by, approved_at)
		VALUES (:id, :user_id, :filename, :original_name, :storage_path, :status, :data, :uploaded_at, :approved_by, :approved_at)`
	if _, err := s.db.NamedExecContext(ctx, insert, file); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (s *SQL) GetFile(ctx context.Context, id string) (*models.File, error) {
	query := s.db.Rebind(`SELECT ` + fileColumns + ` FROM files WHERE id = ?`)
	var file models.File
	if err := s.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &file, nil
}

func (s *SQL) ListFilesByUser(ctx context.Context, userID string) ([]models.File, error) {
	query := s.db.Rebind(`SELECT ` + fileColumns + ` FROM files WHERE user_id = ? ORDER BY uploaded_at, id`)
	files := make([]models.File, 0)
	if err := s.db.SelectContext(ctx, &files, query, userID); err != nil {
		return nil, fmt.Errorf("list files by user: %w", err)
	}
	return files, nil
}

func (s *SQL) ListAllFiles(ctx context.Context) ([]models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files ORDER BY uploaded_at, id`
	files := make([]models.File, 0)
	if err := s.db.SelectContext(ctx, &files, query); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *SQL) ListPendingFiles(ctx context.Context) ([]models.File, error) {
	query := s.db.Rebind(`SELECT ` + fileColumns + ` FROM files WHERE status = ? ORDER BY uploaded_at, id`)
	files := make([]models.File, 0)
	if err := s.db.SelectContext(ctx, &files, query, models.FileStatusPending); err != nil {
		return nil, fmt.Errorf("list pending files: %w", err)
	}
	return files, nil
}

// ReviewFile relies on the WHERE status = 'pending' guard for atomicity: a
// second reviewer's update matches zero rows.
func (s *SQL) ReviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID string, at time.Time) (*models.File, error) {
	query := s.db.Rebind(`UPDATE files SET status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, status, reviewerID, at, id, models.FileStatusPending)
	if err != nil {
		return nil, fmt.Errorf("review file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("review file result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetFile(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}
	return s.GetFile(ctx, id)
}

const chartColumns = `id, user_id, file_id, title, type, x_axis, y_axis, config, created_at`

func (s *SQL) CreateChart(ctx context.Context, chart *models.Chart) error {
	if chart.ID == "" {
		chart.ID = uuid.NewString()
	}
	if chart.CreatedAt.IsZero() {
		chart.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO charts (id, user_id, file_id, title, type, x_axis, y_axis, config, created_at)
		VALUES (:id, :user_id, :file_id, :title, :type, :x_axis, :y_axis, :config, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, insert, chart); err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	return nil
}

func (s *SQL) GetChart(ctx context.Context, id string) (*models.Chart, error) {
	query := s.db.Rebind(`SELECT ` + chartColumns + ` FROM charts WHERE id = ?`)
	var chart models.Chart
	if err := s.db.GetContext(ctx, &chart, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return &chart, nil
}

func (s *SQL) ListChartsByUser(ctx context.Context, userID string) ([]models.Chart, error) {
	query := s.db.Rebind(`SELECT ` + chartColumns + ` FROM charts WHERE user_id = ? ORDER BY created_at, id`)
	charts := make([]models.Chart, 0)
	if err := s.db.SelectContext(ctx, &charts, query, userID); err != nil {
		return nil, fmt.Errorf("list charts by user: %w", err)
	}
	return charts, nil
}

func (s *SQL) ListAllCharts(ctx context.Context) ([]models.Chart, error) {
	query := `SELECT ` + chartColumns + ` FROM charts ORDER BY created_at, id`
	charts := make([]models.Chart, 0)
	if err := s.db.SelectContext(ctx, &charts, query); err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	return charts, nil
}

func (s *SQL) ListChartsByFile(ctx context.Context, fileID string) ([]models.Chart, error) {
	query := s.db.Rebind(`SELECT ` + chartColumns + ` FROM charts WHERE file_id = ? ORDER BY created_at, id`)
	charts := make([]models.Chart, 0)
	if err := s.db.SelectContext(ctx, &charts, query, fileID); err != nil {
		return nil, fmt.Errorf("list charts by file: %w", err)
	}
	return charts, nil
}

const requestColumns = `id, user_id, message, status, requested_at, reviewed_by, reviewed_at`

func (s *SQL) CreateAdminRequest(ctx context.Context, req *models.AdminRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	if req.Status == "" {
		req.Status = models.AdminRequestPending
	}

	const insert = `INSERT INTO admin_requests (id, user_id, message, status, requested_at, reviewed_by, reviewed_at)
		VALUES (:id, :user_id, :message, :status, :requested_at, :reviewed_by, :reviewed_at)`
	if _, err := s.db.NamedExecContext(ctx, insert, req); err != nil {
		return fmt.Errorf("create admin request: %w", err)
	}
	return nil
}

func (s *SQL) GetAdminRequest(ctx context.Context, id string) (*models.AdminRequest, error) {
	query := s.db.Rebind(`SELECT ` + requestColumns + ` FROM admin_requests WHERE id = ?`)
	var req models.AdminRequest
	if err := s.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin request: %w", err)
	}
	return &req, nil
}

func (s *SQL) ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error) {
	query := s.db.Rebind(`SELECT ` + requestColumns + ` FROM admin_requests WHERE status = ? ORDER BY requested_at, id`)
	requests := make([]models.AdminRequest, 0)
	if err := s.db.SelectContext(ctx, &requests, query, models.AdminRequestPending); err != nil {
		return nil, fmt.Errorf("list pending admin requests: %w", err)
	}
	return requests, nil
}

// ApproveAdminRequest reviews the request and promotes the requester inside
// one transaction so a crash cannot leave the pair inconsistent.
func (s *SQL) ApproveAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := tx.Rebind(`SELECT ` + requestColumns + ` FROM admin_requests WHERE id = ? FOR UPDATE`)
	var req models.AdminRequest
	if err := tx.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock admin request: %w", err)
	}
	if req.Status != models.AdminRequestPending {
		return nil, ErrAlreadyReviewed
	}

	update := tx.Rebind(`UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update, models.AdminRequestApproved, reviewerID, at, id); err != nil {
		return nil, fmt.Errorf("approve admin request: %w", err)
	}

	promote := tx.Rebind(`UPDATE users SET role = ? WHERE id = ?`)
	res, err := tx.ExecContext(ctx, promote, models.RoleAdmin, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("promote requester: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve tx: %w", err)
	}

	req.Status = models.AdminRequestApproved
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	return &req, nil
}

func (s *SQL) DenyAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	query := s.db.Rebind(`UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, models.AdminRequestDenied, reviewerID, at, id, models.AdminRequestPending)
	if err != nil {
		return nil, fmt.Errorf("deny admin request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deny admin request result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetAdminRequest(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}
	return s.GetAdminRequest(ctx, id)
}

func (s *SQL) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, detail, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :action, :resource, :resource_id, :detail, :ip_address, :user_agent, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, insert, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}
