package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
)

// JSONFile layers whole-document persistence over the in-memory store: every
// mutation rewrites the backing file. Concurrent processes sharing one file
// get last-writer-wins semantics, which matches the reference behaviour.
type JSONFile struct {
	*Memory
	path   string
	saveMu sync.Mutex
}

// document is the on-disk layout. Users need an explicit shape because the
// API model hides the password hash from JSON.
type document struct {
	Users         []persistedUser       `json:"users"`
	Files         []models.File         `json:"files"`
	Charts        []models.Chart        `json:"charts"`
	AdminRequests []models.AdminRequest `json:"adminRequests"`
	AuditLogs     []models.AuditLog     `json:"auditLogs,omitempty"`
}

type persistedUser struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewJSONFile loads the document at path when present and returns the store.
func NewJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{Memory: NewMemory(), path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read json store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse json store: %w", err)
	}
	s.load(&doc)
	return s, nil
}

func (s *JSONFile) load(doc *document) {
	s.Memory.mu.Lock()
	defer s.Memory.mu.Unlock()

	for _, pu := range doc.Users {
		s.Memory.users[pu.ID] = models.User{
			ID:           pu.ID,
			Email:        pu.Email,
			PasswordHash: pu.Password,
			Name:         pu.Name,
			Role:         pu.Role,
			CreatedAt:    pu.CreatedAt,
		}
	}
	for _, f := range doc.Files {
		s.Memory.files[f.ID] = f
	}
	for _, c := range doc.Charts {
		s.Memory.charts[c.ID] = c
	}
	for _, r := range doc.AdminRequests {
		s.Memory.requests[r.ID] = r
	}
	s.Memory.audits = append(s.Memory.audits, doc.AuditLogs...)
}

func (s *JSONFile) persist() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	doc := s.snapshot()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare json store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write json store: %w", err)
	}
	return nil
}

func (s *JSONFile) snapshot() *document {
	s.Memory.mu.RLock()
	defer s.Memory.mu.RUnlock()

	doc := &document{
		Users:         make([]persistedUser, 0, len(s.Memory.users)),
		Files:         make([]models.File, 0, len(s.Memory.files)),
		Charts:        make([]models.Chart, 0, len(s.Memory.charts)),
		AdminRequests: make([]models.AdminRequest, 0, len(s.Memory.requests)),
		AuditLogs:     append([]models.AuditLog(nil), s.Memory.audits...),
	}
	for _, u := range s.Memory.users {
		doc.Users = append(doc.Users, persistedUser{
			ID:        u.ID,
			Email:     u.Email,
			Password:  u.PasswordHash,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	for _, f := range s.Memory.files {
		doc.Files = append(doc.Files, f)
	}
	for _, c := range s.Memory.charts {
		doc.Charts = append(doc.Charts, c)
	}
	for _, r := range s.Memory.requests {
		doc.AdminRequests = append(doc.AdminRequests, r)
	}
	return doc
}

func (s *JSONFile) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.Memory.CreateUser(ctx, user); err != nil {
		return err
	}
	return s.persist()
}

func (s *JSONFile) UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	user, err := s.Memory.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	return user, s.persist()
}

func (s *JSONFile) CreateFile(ctx context.Context, file *models.File) error {
	if err := s.Memory.CreateFile(ctx, file); err != nil {
		return err
	}
	return s.persist()
}

func (s *JSONFile) ReviewFile(ctx context.Context, id string, status models.FileStatus, reviewerID string, at time.Time) (*models.File, error) {
	file, err := s.Memory.ReviewFile(ctx, id, status, reviewerID, at)
	if err != nil {
		return nil, err
	}
	return file, s.persist()
}

func (s *JSONFile) CreateChart(ctx context.Context, chart *models.Chart) error {
	if err := s.Memory.CreateChart(ctx, chart); err != nil {
		return err
	}
	return s.persist()
}

func (s *JSONFile) CreateAdminRequest(ctx context.Context, req *models.AdminRequest) error {
	if err := s.Memory.CreateAdminRequest(ctx, req); err != nil {
		return err
	}
	return s.persist()
}

func (s *JSONFile) ApproveAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	req, err := s.Memory.ApproveAdminRequest(ctx, id, reviewerID, at)
	if err != nil {
		return nil, err
	}
	return req, s.persist()
}

func (s *JSONFile) DenyAdminRequest(ctx context.Context, id, reviewerID string, at time.Time) (*models.AdminRequest, error) {
	req, err := s.Memory.DenyAdminRequest(ctx, id, reviewerID, at)
	if err != nil {
		return nil, err
	}
	return req, s.persist()
}

func (s *JSONFile) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if err := s.Memory.CreateAuditLog(ctx, log); err != nil {
		return err
	}
	return s.persist()
}
