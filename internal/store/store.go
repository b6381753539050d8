// Package store defines the persistence boundary for users, files, charts
// and admin requests, with interchangeable backends selected once at startup.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
	"github.com/yeshwanthrajr/dataviz-api/pkg/database"
)

// Sentinel errors shared by every backend. Services translate these into
// typed HTTP-aware errors at the boundary.
var (
	ErrNotFound        = errors.New("store: not found")
	ErrDuplicateEmail  = errors.New("store: email already exists")
	ErrAlreadyReviewed = errors.New("store: already reviewed")
)

// Store is the uniform persistence interface. Implementations must make each
// method atomic; ApproveAdminRequest in particular performs a two-entity
// update (request review + role promotion) that must commit or fail as one.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)

	// Files
	CreateFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id string) (*models.File, error)
	ListFilesByUser(ctx context.Context, userID string) ([]models.File, error)
	ListAllFiles(ctx context.Context) ([]models.File, error)
	ListPendingFiles(ctx context.Context) ([]models.File, error)
	// ReviewFile transitions a pending file to approved or rejected, stamping
	// the reviewer. A file that already left pending yields ErrAlreadyReviewed.
	ReviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID string, at time.Time) (*models.File, error)

	// Charts
	CreateChart(ctx context.Context, chart *models.Chart) error
	GetChart(ctx context.Context, id string) (*models.Chart, error)
	ListChartsByUser(ctx context.Context, userID string) ([]models.Chart, error)
	ListChartsByFile(ctx context.Context, fileID string) ([]models.Chart, error)
	ListAllCharts(ctx context.Context) ([]models.Chart, error)

	// Admin requests
	CreateAdminRequest(ctx context.Context, req *models.AdminRequest) error
	GetAdminRequest(ctx context.Context, id string) (*models.AdminRequest, error)
	ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error)
	// ApproveAdminRequest marks the request approved and promotes its
	// requester to admin atomically.
	ApproveAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error)
	DenyAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error)

	// Audit
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error

	Ping(ctx context.Context) error
	Close() error
}

// Open constructs the backend named by cfg.Storage.Driver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverJSON:
		return NewJSONFile(cfg.Storage.JSONPath)
	case config.DriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewSQL(db, config.DriverPostgres)
	case config.DriverMySQL:
		db, err := database.NewMySQL(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		return NewSQL(db, config.DriverMySQL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
