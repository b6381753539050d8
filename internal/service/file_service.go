package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/export"
	"github.com/yeshwanthrajr/dataviz-api/pkg/storage"
	"github.com/yeshwanthrajr/dataviz-api/pkg/tabular"
)

type fileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id string) (*models.File, error)
	ListFilesByUser(ctx context.Context, userID string) ([]models.File, error)
	ListAllFiles(ctx context.Context) ([]models.File, error)
	ListPendingFiles(ctx context.Context) ([]models.File, error)
	ReviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID string, at time.Time) (*models.File, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// FileService manages the upload and review lifecycle for data files.
type FileService struct {
	store    fileStore
	uploads  *storage.LocalStorage
	exporter *export.CSVExporter
	logger   *zap.Logger
	metrics  *MetricsService
	maxBytes int64
}

// NewFileService constructs a FileService instance.
func NewFileService(st fileStore, uploads *storage.LocalStorage, logger *zap.Logger, metrics *MetricsService, maxBytes int64) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		store:    st,
		uploads:  uploads,
		exporter: export.NewCSVExporter(),
		logger:   logger,
		metrics:  metrics,
		maxBytes: maxBytes,
	}
}

// Upload validates, parses and persists a spreadsheet, leaving it pending
// review. The raw bytes are kept on disk next to the parsed rows so the
// original upload can be recovered.
func (s *FileService) Upload(ctx context.Context, caller *models.User, originalName string, r io.Reader) (*models.File, error) {
	if !tabular.SupportedExt(originalName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported file type, expected .csv, .xls or .xlsx")
	}

	payload, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if int64(len(payload)) > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}
	if len(payload) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty upload")
	}

	rows, err := tabular.Decode(bytes.NewReader(payload), originalName)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupported) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported file type, expected .csv, .xls or .xlsx")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not parse file contents")
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	storagePath, err := s.uploads.SaveStream(storedName, bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	file := &models.File{
		UserID:       caller.ID,
		Filename:     storedName,
		OriginalName: originalName,
		StoragePath:  storagePath,
		Status:       models.FileStatusPending,
		Data:         models.RowData(rows),
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		if rmErr := s.uploads.Delete(storedName); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("filename", storedName), zap.Error(rmErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create file record")
	}

	if s.metrics != nil {
		s.metrics.FileUploaded()
	}
	if err := s.store.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &caller.ID,
		Action:     models.AuditActionFileUpload,
		Resource:   "file",
		ResourceID: &file.ID,
	}); err != nil {
		s.logger.Warn("failed to record upload audit log", zap.Error(err))
	}

	return file, nil
}

// Approve transitions a pending file to approved.
func (s *FileService) Approve(ctx context.Context, reviewer *models.User, id string) (*models.File, error) {
	return s.review(ctx, reviewer, id, models.FileStatusApproved, models.AuditActionFileApprove)
}

// Reject transitions a pending file to rejected.
func (s *FileService) Reject(ctx context.Context, reviewer *models.User, id string) (*models.File, error) {
	return s.review(ctx, reviewer, id, models.FileStatusRejected, models.AuditActionFileReject)
}

func (s *FileService) review(ctx context.Context, reviewer *models.User, id string, status models.FileStatus, action string) (*models.File, error) {
	file, err := s.store.ReviewFile(ctx, id, status, reviewer.ID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		case errors.Is(err, store.ErrAlreadyReviewed):
			return nil, appErrors.Clone(appErrors.ErrConflict, "file has already been reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review file")
	}

	if err := s.store.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &reviewer.ID,
		Action:     action,
		Resource:   "file",
		ResourceID: &file.ID,
	}); err != nil {
		s.logger.Warn("failed to record review audit log", zap.Error(err))
	}
	return file, nil
}

// Get returns a file when the caller owns it or holds an admin role.
func (s *FileService) Get(ctx context.Context, caller *models.User, id string) (*models.File, error) {
	file, err := s.store.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.UserID != caller.ID && !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this file")
	}
	return file, nil
}

// List returns the caller's files, or every file for admin roles.
func (s *FileService) List(ctx context.Context, caller *models.User) ([]models.File, error) {
	var (
		files []models.File
		err   error
	)
	if caller.Role.AtLeast(models.RoleAdmin) {
		files, err = s.store.ListAllFiles(ctx)
	} else {
		files, err = s.store.ListFilesByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, nil
}

// ListPending returns the review queue.
func (s *FileService) ListPending(ctx context.Context) ([]models.File, error) {
	files, err := s.store.ListPendingFiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending files")
	}
	return files, nil
}

// ExportCSV renders the parsed rows of a file as a CSV download.
func (s *FileService) ExportCSV(ctx context.Context, caller *models.User, id string) ([]byte, string, error) {
	file, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}

	headers := make([]string, 0)
	for column := range tabular.Columns([]map[string]interface{}(file.Data)) {
		headers = append(headers, column)
	}
	sort.Strings(headers)

	rows := make([]map[string]string, 0, len(file.Data))
	for _, row := range file.Data {
		out := make(map[string]string, len(row))
		for key, value := range row {
			out[key] = fmt.Sprint(value)
		}
		rows = append(rows, out)
	}

	payload, err := s.exporter.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, file.OriginalName, nil
}
