package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
)

type adminRequestStore interface {
	CreateAdminRequest(ctx context.Context, req *models.AdminRequest) error
	ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error)
	ApproveAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error)
	DenyAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateAdminRequestPayload is the body for requesting a promotion.
type CreateAdminRequestPayload struct {
	Message string `json:"message" validate:"required"`
}

// AdminRequestService runs the promotion workflow: a standard user asks for
// the admin role and a superadmin reviews the request.
type AdminRequestService struct {
	store     adminRequestStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminRequestService constructs an AdminRequestService instance.
func NewAdminRequestService(st adminRequestStore, validate *validator.Validate, logger *zap.Logger) *AdminRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminRequestService{store: st, validator: validate, logger: logger}
}

// Request creates a pending promotion request for the caller. Only callers
// whose current role is exactly "user" are eligible.
func (s *AdminRequestService) Request(ctx context.Context, caller *models.User, payload CreateAdminRequestPayload) (*models.AdminRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin request payload")
	}
	if caller.Role != models.RoleUser {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only standard users can request promotion")
	}

	req := &models.AdminRequest{
		UserID:  caller.ID,
		Message: payload.Message,
		Status:  models.AdminRequestPending,
	}
	if err := s.store.CreateAdminRequest(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin request")
	}
	return req, nil
}

// ListPending returns the superadmin review queue.
func (s *AdminRequestService) ListPending(ctx context.Context) ([]models.AdminRequest, error) {
	requests, err := s.store.ListPendingAdminRequests(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admin requests")
	}
	return requests, nil
}

// Approve reviews the request and promotes its requester in one store
// operation.
func (s *AdminRequestService) Approve(ctx context.Context, reviewer *models.User, id string) (*models.AdminRequest, error) {
	req, err := s.store.ApproveAdminRequest(ctx, id, reviewer.ID, time.Now().UTC())
	if err != nil {
		return nil, s.reviewError(err)
	}

	s.audit(ctx, reviewer, models.AuditActionAdminRequestApprove, req)
	if err := s.store.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &reviewer.ID,
		Action:     models.AuditActionRoleChange,
		Resource:   "user",
		ResourceID: &req.UserID,
		Detail:     []byte(`{"role":"admin"}`),
	}); err != nil {
		s.logger.Warn("failed to record role change audit log", zap.Error(err))
	}
	return req, nil
}

// Deny reviews the request without touching the requester's role.
func (s *AdminRequestService) Deny(ctx context.Context, reviewer *models.User, id string) (*models.AdminRequest, error) {
	req, err := s.store.DenyAdminRequest(ctx, id, reviewer.ID, time.Now().UTC())
	if err != nil {
		return nil, s.reviewError(err)
	}

	s.audit(ctx, reviewer, models.AuditActionAdminRequestDeny, req)
	return req, nil
}

func (s *AdminRequestService) reviewError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "admin request not found")
	case errors.Is(err, store.ErrAlreadyReviewed):
		return appErrors.Clone(appErrors.ErrConflict, "admin request has already been reviewed")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review admin request")
}

func (s *AdminRequestService) audit(ctx context.Context, reviewer *models.User, action string, req *models.AdminRequest) {
	if err := s.store.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &reviewer.ID,
		Action:     action,
		Resource:   "admin_request",
		ResourceID: &req.ID,
	}); err != nil {
		s.logger.Warn("failed to record admin request audit log", zap.Error(err))
	}
}
