package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himique/Industial-Automation/models"
)

func TestFindUserByUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user, err := FindUserByUsername(ctx, db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, created, err := EnsureUser(ctx, db, "admin", "hash-1", true)
	require.NoError(t, err)
	assert.True(t, created)

	user, err = FindUserByUsername(ctx, db, "admin")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsActive)
}

func TestEnsureUser_InsertOrIgnore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, created, err := EnsureUser(ctx, db, "admin", "hash-1", true)
	require.NoError(t, err)
	assert.True(t, created)

	// A second provisioning run must not touch the existing row.
	second, created, err := EnsureUser(ctx, db, "admin", "hash-2", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "hash-1", second.PasswordHash)
	assert.True(t, second.IsAdmin)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
