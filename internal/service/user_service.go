package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
)

type userStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService exposes administrative user management.
type UserService struct {
	store  userStore
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(st userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: st, logger: logger}
}

// List returns every account, public fields only.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

// UpdateRole changes a user's role. Promotion to superadmin is not a valid
// target; that role exists only through bootstrap.
func (s *UserService) UpdateRole(ctx context.Context, caller *models.User, id string, role models.UserRole) (*models.PublicUser, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid target role %q", role))
	}

	user, err := s.store.UpdateUserRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	if err := s.store.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &caller.ID,
		Action:     models.AuditActionRoleChange,
		Resource:   "user",
		ResourceID: &user.ID,
		Detail:     []byte(fmt.Sprintf(`{"role":%q}`, role)),
	}); err != nil {
		s.logger.Warn("failed to record role change audit log", zap.Error(err))
	}

	public := user.Public()
	return &public, nil
}
