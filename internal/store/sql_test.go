package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
)

func newMock(t *testing.T) (*SQL, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return &SQL{db: sqlxdb, dialect: config.DriverPostgres}, mock, func() {
		db.Close()
	}
}

func fileRows(file *models.File) *sqlmock.Rows {
	data, _ := file.Data.Value()
	return sqlmock.NewRows([]string{"id", "user_id", "filename", "original_name", "storage_path", "status", "data", "uploaded_at", "approved_by", "approved_at"}).
		AddRow(file.ID, file.UserID, file.Filename, file.OriginalName, file.StoragePath, string(file.Status), data, file.UploadedAt, file.ApprovedBy, file.ApprovedAt)
}

func TestNewSQLCreatesSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "files", "charts", "admin_requests", "audit_logs"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	_, err = NewSQL(sqlx.NewDb(db, "sqlmock"), config.DriverPostgres)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreateUser(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	zero := sqlmock.NewRows([]string{"count"}).AddRow(0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)")).
		WithArgs("new@example.com").
		WillReturnRows(zero)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.com", PasswordHash: "hash", Name: "New", Role: models.RoleUser}
	require.NoError(t, s.CreateUser(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreateUserDuplicateEmail(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	one := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)")).
		WithArgs("dup@example.com").
		WillReturnRows(one)

	err := s.CreateUser(context.Background(), &models.User{Email: "dup@example.com", PasswordHash: "hash", Name: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetUserByEmail(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at"}).
		AddRow("u1", "user@example.com", "hash", "User", string(models.RoleUser), now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, role, created_at FROM users WHERE LOWER(email) = LOWER(?)")).
		WithArgs("user@example.com").
		WillReturnRows(rows)

	user, err := s.GetUserByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetUserNotFound(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	empty := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, role, created_at FROM users WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(empty)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLReviewFile(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND status = ?")).
		WithArgs(string(models.FileStatusApproved), "admin1", now, "f1", string(models.FileStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	approvedBy := "admin1"
	file := &models.File{
		ID: "f1", UserID: "u1", Filename: "abc.csv", OriginalName: "sales.csv",
		StoragePath: "/tmp/abc.csv", Status: models.FileStatusApproved,
		Data:       models.RowData{{"region": "North"}},
		UploadedAt: now, ApprovedBy: &approvedBy, ApprovedAt: &now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + fileColumns + " FROM files WHERE id = ?")).
		WithArgs("f1").
		WillReturnRows(fileRows(file))

	reviewed, err := s.ReviewFile(context.Background(), "f1", models.FileStatusApproved, "admin1", now)
	require.NoError(t, err)
	assert.Equal(t, models.FileStatusApproved, reviewed.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLReviewFileAlreadyReviewed(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND status = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	reviewedBy := "other"
	file := &models.File{
		ID: "f1", UserID: "u1", Filename: "abc.csv", OriginalName: "sales.csv",
		StoragePath: "/tmp/abc.csv", Status: models.FileStatusRejected,
		UploadedAt: now, ApprovedBy: &reviewedBy, ApprovedAt: &now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + fileColumns + " FROM files WHERE id = ?")).
		WithArgs("f1").
		WillReturnRows(fileRows(file))

	_, err := s.ReviewFile(context.Background(), "f1", models.FileStatusApproved, "admin1", now)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLReviewFileNotFound(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND status = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	empty := sqlmock.NewRows([]string{"id", "user_id", "filename", "original_name", "storage_path", "status", "data", "uploaded_at", "approved_by", "approved_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + fileColumns + " FROM files WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(empty)

	_, err := s.ReviewFile(context.Background(), "missing", models.FileStatusApproved, "admin1", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLListPendingFiles(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	file := &models.File{
		ID: "f1", UserID: "u1", Filename: "abc.csv", OriginalName: "sales.csv",
		StoragePath: "/tmp/abc.csv", Status: models.FileStatusPending, UploadedAt: now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + fileColumns + " FROM files WHERE status = ? ORDER BY uploaded_at, id")).
		WithArgs(string(models.FileStatusPending)).
		WillReturnRows(fileRows(file))

	files, err := s.ListPendingFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "f1", files[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreateChart(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO charts").WillReturnResult(sqlmock.NewResult(1, 1))

	chart := &models.Chart{UserID: "u1", FileID: "f1", Title: "Revenue", Type: models.ChartTypeBar, XAxis: "region", YAxis: "revenue"}
	require.NoError(t, s.CreateChart(context.Background(), chart))
	assert.NotEmpty(t, chart.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLApproveAdminRequest(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "user_id", "message", "status", "requested_at", "reviewed_by", "reviewed_at"}).
		AddRow("r1", "u1", "please", string(models.AdminRequestPending), now, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + requestColumns + " FROM admin_requests WHERE id = ? FOR UPDATE")).
		WithArgs("r1").
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ?")).
		WithArgs(string(models.AdminRequestApproved), "super1", now, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = ? WHERE id = ?")).
		WithArgs(string(models.RoleAdmin), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	approved, err := s.ApproveAdminRequest(context.Background(), "r1", "super1", now)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRequestApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "super1", *approved.ReviewedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLApproveAdminRequestAlreadyReviewed(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "user_id", "message", "status", "requested_at", "reviewed_by", "reviewed_at"}).
		AddRow("r1", "u1", "please", string(models.AdminRequestDenied), now, "super1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + requestColumns + " FROM admin_requests WHERE id = ? FOR UPDATE")).
		WithArgs("r1").
		WillReturnRows(rows)
	mock.ExpectRollback()

	_, err := s.ApproveAdminRequest(context.Background(), "r1", "super1", now)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDenyAdminRequest(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ? AND status = ?")).
		WithArgs(string(models.AdminRequestDenied), "super1", now, "r1", string(models.AdminRequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{"id", "user_id", "message", "status", "requested_at", "reviewed_by", "reviewed_at"}).
		AddRow("r1", "u1", "please", string(models.AdminRequestDenied), now, "super1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + requestColumns + " FROM admin_requests WHERE id = ?")).
		WithArgs("r1").
		WillReturnRows(rows)

	denied, err := s.DenyAdminRequest(context.Background(), "r1", "super1", now)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRequestDenied, denied.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreateAuditLog(t *testing.T) {
	s, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "u1"
	log := &models.AuditLog{UserID: &userID, Action: models.AuditActionLogin, Resource: "auth"}
	require.NoError(t, s.CreateAuditLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
