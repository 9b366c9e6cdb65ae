package repositories_test

import (
	"testing"

	"artfolio_backend/internal/models"
	"artfolio_backend/internal/repositories"
	"artfolio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindOne(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewUserRepository()

	alice := helpers.CreateUser(t, db, "alice", "secret1")
	helpers.CreateUser(t, db, "bob", "secret1")

	got, err := repo.FindOne(db, models.UserFilter{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = repo.FindOne(db, models.UserFilter{UID: alice.UID})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.FindOne(db, models.UserFilter{Username: "alice", Email: "bob@test.com"})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	_, err = repo.FindOne(db, models.UserFilter{})
	assert.ErrorIs(t, err, repositories.ErrEmptyUserFilter)
}

func TestUserRepository_UsernameIsNotUniqueAtStoreLevel(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewUserRepository()

	helpers.CreateUser(t, db, "alice", "secret1")
	dup := &models.User{Username: "alice", UID: "uid-2", Email: "alice2@test.com", PasswordHash: "x"}

	assert.NoError(t, repo.Create(db, dup))
}
