package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/tabular"
)

type chartStore interface {
	GetFile(ctx context.Context, id string) (*models.File, error)
	CreateChart(ctx context.Context, chart *models.Chart) error
	GetChart(ctx context.Context, id string) (*models.Chart, error)
	ListChartsByUser(ctx context.Context, userID string) ([]models.Chart, error)
	ListChartsByFile(ctx context.Context, fileID string) ([]models.Chart, error)
}

// CreateChartRequest holds the payload for deriving a chart from a file.
type CreateChartRequest struct {
	FileID string           `json:"fileId" validate:"required"`
	Title  string           `json:"title" validate:"required"`
	Type   models.ChartType `json:"type" validate:"required"`
	XAxis  string           `json:"xAxis" validate:"required"`
	YAxis  string           `json:"yAxis" validate:"required"`
	Config models.JSONMap   `json:"config"`
}

// ChartService derives chart definitions from approved files.
type ChartService struct {
	store     chartStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewChartService constructs a ChartService instance.
func NewChartService(st chartStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ChartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChartService{store: st, validator: validate, logger: logger, metrics: metrics}
}

// Create validates the chart definition against the source file. The file
// must be approved and both axes must name columns present in its rows.
func (s *ChartService) Create(ctx context.Context, caller *models.User, req CreateChartRequest) (*models.Chart, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chart payload")
	}
	if !models.ValidChartType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown chart type %q", req.Type))
	}

	file, err := s.store.GetFile(ctx, req.FileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.UserID != caller.ID && !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to chart this file")
	}
	if file.Status != models.FileStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file must be approved before charting")
	}

	columns := tabular.Columns([]tabular.Row(file.Data))
	for _, axis := range []string{req.XAxis, req.YAxis} {
		if _, ok := columns[axis]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("column %q not present in file data", axis))
		}
	}

	chart := &models.Chart{
		UserID: caller.ID,
		FileID: file.ID,
		Title:  req.Title,
		Type:   req.Type,
		XAxis:  req.XAxis,
		YAxis:  req.YAxis,
		Config: req.Config,
	}
	if err := s.store.CreateChart(ctx, chart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create chart")
	}

	if s.metrics != nil {
		s.metrics.ChartCreated(string(chart.Type))
	}
	return chart, nil
}

// ListForUser returns the caller's charts.
func (s *ChartService) ListForUser(ctx context.Context, caller *models.User) ([]models.Chart, error) {
	charts, err := s.store.ListChartsByUser(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list charts")
	}
	return charts, nil
}

// ListForFile returns a file's charts after an owner-or-admin access check.
func (s *ChartService) ListForFile(ctx context.Context, caller *models.User, fileID string) ([]models.Chart, error) {
	file, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.UserID != caller.ID && !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this file")
	}

	charts, err := s.store.ListChartsByFile(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list charts")
	}
	return charts, nil
}
