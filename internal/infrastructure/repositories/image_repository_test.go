package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"catalog-ingest/internal/domain/entities"
)

func TestGormImageRepository_CreateAndFindByUploadAndVariant(t *testing.T) {
	db := newTestDB(t)
	uploadRepo := NewGormUploadRepository(db)
	imageRepo := NewGormImageRepository(db)
	ctx := context.Background()

	u := newTestUpload("checksum-image-1")
	require.NoError(t, uploadRepo.Create(ctx, u))

	img := &entities.Image{ID: uuid.New(), UploadID: u.ID, Variant: "small", Path: "images/small/a.jpg"}
	require.NoError(t, imageRepo.Create(ctx, img))

	found, err := imageRepo.FindByUploadAndVariant(ctx, u.ID, "small")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, img.Path, found.Path)

	notFound, err := imageRepo.FindByUploadAndVariant(ctx, u.ID, "large")
	require.NoError(t, err)
	require.Nil(t, notFound)
}

func TestGormImageRepository_FindOriginalByExactPath(t *testing.T) {
	db := newTestDB(t)
	uploadRepo := NewGormUploadRepository(db)
	imageRepo := NewGormImageRepository(db)
	ctx := context.Background()

	u := newTestUpload("checksum-image-2")
	require.NoError(t, uploadRepo.Create(ctx, u))

	img := &entities.Image{ID: uuid.New(), UploadID: u.ID, Variant: "original", Path: "uploads/abc_photo.jpg"}
	require.NoError(t, imageRepo.Create(ctx, img))

	found, err := imageRepo.FindOriginalByExactPath(ctx, "uploads/abc_photo.jpg")
	require.NoError(t, err)
	require.NotNil(t, found)

	notFound, err := imageRepo.FindOriginalByExactPath(ctx, "uploads/other.jpg")
	require.NoError(t, err)
	require.Nil(t, notFound)
}

func TestGormImageRepository_FindOriginalByUploadFilename(t *testing.T) {
	db := newTestDB(t)
	uploadRepo := NewGormUploadRepository(db)
	imageRepo := NewGormImageRepository(db)
	ctx := context.Background()

	u := newTestUpload("checksum-image-3")
	u.OriginalFilename = "catalog-photo.png"
	require.NoError(t, uploadRepo.Create(ctx, u))

	img := &entities.Image{ID: uuid.New(), UploadID: u.ID, Variant: "original", Path: "uploads/x.png"}
	require.NoError(t, imageRepo.Create(ctx, img))

	found, err := imageRepo.FindOriginalByUploadFilename(ctx, "catalog-photo.png")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, img.ID, found.ID)
}

func TestGormImageRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	uploadRepo := NewGormUploadRepository(db)
	imageRepo := NewGormImageRepository(db)
	ctx := context.Background()

	u := newTestUpload("checksum-image-4")
	require.NoError(t, uploadRepo.Create(ctx, u))

	img := &entities.Image{ID: uuid.New(), UploadID: u.ID, Variant: "medium", Path: "images/medium/a.jpg"}
	require.NoError(t, imageRepo.Create(ctx, img))

	require.NoError(t, imageRepo.Delete(ctx, img.ID))

	found, err := imageRepo.FindByID(ctx, img.ID)
	require.NoError(t, err)
	require.Nil(t, found)
}
