package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/portfolio"
	"artfolio_backend/internal/services"
	"artfolio_backend/internal/services/dto"
	"artfolio_backend/internal/storage"
	"artfolio_backend/pkg/apperrors"
	"artfolio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type artworkFixture struct {
	svc   services.ArtworkService
	gw    *gateway.SQLGateway
	files *storage.LocalStorage
	owner *models.User
	other *models.User
}

func newArtworkFixture(t *testing.T) *artworkFixture {
	t.Helper()

	db := helpers.NewTestDB(t)
	gw := gateway.NewSQLGateway(db, gateway.NewLocalFeed())
	files, err := storage.NewLocalStorage(t.TempDir(), "/api/v1/files")
	require.NoError(t, err)

	svc := services.NewArtworkService(gw, files, services.UploadConfig{
		MaxFileSize:    1 << 20,
		AllowedTypes:   []string{"image/png", "image/jpeg"},
		ImageQuality:   80,
		ThumbnailWidth: 16,
	})

	return &artworkFixture{
		svc:   svc,
		gw:    gw,
		files: files,
		owner: helpers.CreateUser(t, db, "alice", "password1"),
		other: helpers.CreateUser(t, db, "bob", "password1"),
	}
}

func (f *artworkFixture) upload(t *testing.T, name string) *models.Artwork {
	t.Helper()

	artwork, err := f.svc.Upload(context.Background(), f.owner.ID, &dto.ArtworkUpload{
		FileName:    name,
		ContentType: "image/png",
		Data:        helpers.PNGBytes(t, 64, 32),
	})
	require.NoError(t, err)
	return artwork
}

func TestArtworkService_Upload(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()

	artwork := f.upload(t, "Sunset over hills.png")

	assert.NotEmpty(t, artwork.ID)
	assert.Equal(t, "Sunset over hills", artwork.Title)
	assert.Equal(t, portfolio.DefaultDescription, artwork.Description)
	assert.Nil(t, artwork.InPortfolio, "fresh uploads have no portfolio flag")
	assert.True(t, strings.HasPrefix(artwork.ImageURL, "/api/v1/files/artworks/"+f.owner.ID+"/"))

	exists, err := f.files.Exists(ctx, artwork.ImagePath)
	require.NoError(t, err)
	assert.True(t, exists)

	stored, err := f.gw.FindArtwork(ctx, artwork.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, stored.Variants, "thumbnail")
	assert.Contains(t, stored.Variants, "preview")
}

func TestArtworkService_Upload_Rejects(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, f.owner.ID, &dto.ArtworkUpload{
		FileName: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	_, err = f.svc.Upload(ctx, f.owner.ID, &dto.ArtworkUpload{
		FileName: "fake.png", ContentType: "image/png", Data: []byte("not an image"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	assert.ErrorIs(t, f.svc.ValidateFile("image/png", 2<<20), apperrors.ErrFileTooLarge)
	assert.NoError(t, f.svc.ValidateFile("image/PNG; charset=binary", 10))

	list, err := f.svc.List(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestArtworkService_CommitPendingUpload(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()

	pending := portfolio.NewPendingUploads(5, 0)
	staged, err := pending.Stage("study.png", "image/png", helpers.PNGBytes(t, 8, 8))
	require.NoError(t, err)

	artwork, err := pending.Commit(ctx, staged.TempID, f.svc.Committer(f.owner.ID))
	require.NoError(t, err)
	assert.Equal(t, "study", artwork.Title)
	assert.Equal(t, f.owner.ID, artwork.OwnerID)
	assert.Zero(t, pending.Len())
}

func TestArtworkService_OwnerChecks(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()
	artwork := f.upload(t, "a.png")

	_, err := f.svc.Get(ctx, f.other.ID, artwork.ID)
	assert.ErrorIs(t, err, apperrors.ErrArtworkNotFound, "unpublished work is hidden from others")

	_, err = f.svc.Update(ctx, f.other.ID, artwork.ID, &dto.UpdateArtworkRequest{Title: models.String("x")})
	assert.ErrorIs(t, err, apperrors.ErrArtworkAccessDenied)
	if appErr, ok := apperrors.AsAppError(err); assert.True(t, ok) {
		assert.Equal(t, http.StatusForbidden, appErr.HTTPCode)
	}

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other.ID, artwork.ID), apperrors.ErrArtworkAccessDenied)

	_, err = f.svc.Get(ctx, f.owner.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrArtworkNotFound)
}

func TestArtworkService_UpdateAndPublicPortfolio(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()
	first := f.upload(t, "a.png")
	f.upload(t, "b.png")

	updated, err := f.svc.Update(ctx, f.owner.ID, first.ID, &dto.UpdateArtworkRequest{
		Title:       models.String("Dawn"),
		InPortfolio: models.Bool(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dawn", updated.Title)
	assert.True(t, updated.IsInPortfolio())

	_, err = f.svc.Update(ctx, f.owner.ID, first.ID, &dto.UpdateArtworkRequest{})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	public, err := f.svc.PublicPortfolio(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, public.Artworks, 1)
	assert.Equal(t, first.ID, public.Artworks[0].ID)

	visible, err := f.svc.Get(ctx, f.other.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dawn", visible.Title)

	_, err = f.svc.PublicPortfolio(ctx, "nobody")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestArtworkService_DeleteRemovesFiles(t *testing.T) {
	f := newArtworkFixture(t)
	ctx := context.Background()
	artwork := f.upload(t, "a.png")

	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, artwork.ID))

	stored, err := f.gw.FindArtwork(ctx, artwork.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	exists, err := f.files.Exists(ctx, artwork.ImagePath)
	require.NoError(t, err)
	assert.False(t, exists)

	thumb := strings.TrimSuffix(artwork.ImagePath, ".png") + "_thumbnail.png"
	exists, err = f.files.Exists(ctx, thumb)
	require.NoError(t, err)
	assert.False(t, exists)
}
