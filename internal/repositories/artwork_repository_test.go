package repositories_test

import (
	"testing"

	"artfolio_backend/internal/models"
	"artfolio_backend/internal/repositories"
	"artfolio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtworkRepository_FindByOwnerKeepsCreationOrder(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewArtworkRepository()

	owner := helpers.CreateUser(t, db, "alice", "secret1")
	other := helpers.CreateUser(t, db, "bob", "secret1")
	a := helpers.CreateArtwork(t, db, owner.ID, "a")
	b := helpers.CreateArtwork(t, db, owner.ID, "b")
	helpers.CreateArtwork(t, db, other.ID, "foreign")
	c := helpers.CreateArtwork(t, db, owner.ID, "c")

	list, err := repo.FindByOwner(db, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestArtworkRepository_UpdateIsPartialAndKeepsOwner(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewArtworkRepository()

	owner := helpers.CreateUser(t, db, "alice", "secret1")
	art := helpers.CreateArtwork(t, db, owner.ID, "sunset")

	err := repo.Update(db, art.ID, models.ArtworkPatch{
		Title:       models.String("Sunset II"),
		InPortfolio: models.Bool(true),
	})
	require.NoError(t, err)

	got, err := repo.FindByID(db, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunset II", got.Title)
	assert.Equal(t, art.Description, got.Description)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.True(t, got.IsInPortfolio())

	curated, err := repo.FindInPortfolio(db, owner.ID)
	require.NoError(t, err)
	assert.Len(t, curated, 1)
}

func TestArtworkRepository_UpdateVariantsRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewArtworkRepository()

	owner := helpers.CreateUser(t, db, "alice", "secret1")
	art := helpers.CreateArtwork(t, db, owner.ID, "sunset")

	err := repo.UpdateVariants(db, art.ID, map[string]interface{}{
		"thumbnail": "/api/v1/files/sunset_thumbnail.jpg",
		"preview":   "/api/v1/files/sunset_preview.jpg",
	})
	require.NoError(t, err)

	got, err := repo.FindByID(db, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/sunset_thumbnail.jpg", got.Variants["thumbnail"])
	assert.Equal(t, "/api/v1/files/sunset_preview.jpg", got.Variants["preview"])

	err = repo.UpdateVariants(db, "missing", map[string]interface{}{"thumbnail": "x"})
	assert.ErrorIs(t, err, repositories.ErrArtworkNotFound)
}

func TestArtworkRepository_Errors(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewArtworkRepository()

	_, err := repo.FindByID(db, "missing")
	assert.ErrorIs(t, err, repositories.ErrArtworkNotFound)

	err = repo.Update(db, "missing", models.ArtworkPatch{Title: models.String("x")})
	assert.ErrorIs(t, err, repositories.ErrArtworkNotFound)

	err = repo.Update(db, "missing", models.ArtworkPatch{})
	assert.ErrorIs(t, err, repositories.ErrEmptyPatch)

	assert.ErrorIs(t, repo.Delete(db, "missing"), repositories.ErrArtworkNotFound)
}

func TestArtworkRepository_Delete(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewArtworkRepository()

	owner := helpers.CreateUser(t, db, "alice", "secret1")
	art := helpers.CreateArtwork(t, db, owner.ID, "sunset")

	require.NoError(t, repo.Delete(db, art.ID))
	_, err := repo.FindByID(db, art.ID)
	assert.ErrorIs(t, err, repositories.ErrArtworkNotFound)
}
