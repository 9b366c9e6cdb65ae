package helpers

import (
	"fmt"
	"testing"
	"time"

	"artfolio_backend/database"
	"artfolio_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewTestDB открывает чистую in-memory SQLite с миграциями
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err, "Не удалось открыть тестовую БД")
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser создает пользователя с захешированным паролем
func CreateUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		UID:          uuid.NewString(),
		Email:        fmt.Sprintf("%s@test.com", username),
		DisplayName:  username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error, "Не удалось создать пользователя %s", username)
	return user
}

// CreateArtwork создает работу владельца. Между вызовами выдерживается пауза,
// чтобы порядок created_at был строгим.
func CreateArtwork(t *testing.T, db *gorm.DB, ownerID, title string) *models.Artwork {
	t.Helper()

	artwork := &models.Artwork{
		OwnerID:     ownerID,
		Title:       title,
		Description: "Click to add a description for your project.",
		ImageURL:    "/api/v1/files/" + title + ".jpg",
	}
	require.NoError(t, db.Create(artwork).Error)
	time.Sleep(2 * time.Millisecond)
	return artwork
}
