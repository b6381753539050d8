package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
)

func TestUserList(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, nil)

	fixtureUser(t, st, "a@example.com", models.RoleUser)
	fixtureUser(t, st, "b@example.com", models.RoleAdmin)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestUpdateRole(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, nil)

	super := fixtureUser(t, st, "root@example.com", models.RoleSuperAdmin)
	target := fixtureUser(t, st, "target@example.com", models.RoleUser)

	updated, err := svc.UpdateRole(context.Background(), super, target.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUpdateRoleRejectsSuperadminTarget(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, nil)

	super := fixtureUser(t, st, "root@example.com", models.RoleSuperAdmin)
	target := fixtureUser(t, st, "target@example.com", models.RoleUser)

	for _, role := range []models.UserRole{models.RoleSuperAdmin, "owner", ""} {
		_, err := svc.UpdateRole(context.Background(), super, target.ID, role)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, "role %q", role)
	}
}

func TestUpdateRoleMissingUser(t *testing.T) {
	st := store.NewMemory()
	svc := NewUserService(st, nil)
	super := fixtureUser(t, st, "root@example.com", models.RoleSuperAdmin)

	_, err := svc.UpdateRole(context.Background(), super, "missing", models.RoleAdmin)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
