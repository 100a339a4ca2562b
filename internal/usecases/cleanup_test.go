package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-ingest/internal/infrastructure/storage"
)

func TestCleanupService_Run_ReapsStaleUploads(t *testing.T) {
	uploads := newFakeUploadRepository()
	blobs := storage.NewLocalBlobStore(t.TempDir())
	ctx := context.Background()

	stale := newTestUpload("stale-upload")
	stale.Status = "uploading"
	require.NoError(t, uploads.Create(ctx, stale))
	uploads.uploads[stale.ID].UpdatedAt = time.Now().Add(-48 * time.Hour)

	require.NoError(t, blobs.Put(chunkPath(stale.ID, 0), strings.NewReader("chunk data")))

	fresh := newTestUpload("fresh-upload")
	fresh.Status = "uploading"
	require.NoError(t, uploads.Create(ctx, fresh))
	uploads.uploads[fresh.ID].UpdatedAt = time.Now()

	service := NewCleanupService(uploads, blobs, 24*3600)
	service.Run(ctx)

	staleAfter, err := uploads.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", staleAfter.Status)
	assert.False(t, blobs.Exists(chunkPath(stale.ID, 0)))

	freshAfter, err := uploads.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploading", freshAfter.Status, "a recently touched upload must not be reaped")
}

func TestCleanupService_Run_ReapsMultipleStaleUploads(t *testing.T) {
	uploads := newFakeUploadRepository()
	blobs := storage.NewLocalBlobStore(t.TempDir())
	ctx := context.Background()

	first := newTestUpload("stale-one")
	first.Status = "pending"
	require.NoError(t, uploads.Create(ctx, first))
	uploads.uploads[first.ID].UpdatedAt = time.Now().Add(-48 * time.Hour)

	second := newTestUpload("stale-two")
	second.Status = "pending"
	require.NoError(t, uploads.Create(ctx, second))
	uploads.uploads[second.ID].UpdatedAt = time.Now().Add(-48 * time.Hour)

	service := NewCleanupService(uploads, blobs, 24*3600)
	service.Run(ctx)

	firstAfter, _ := uploads.FindByID(ctx, first.ID)
	secondAfter, _ := uploads.FindByID(ctx, second.ID)
	assert.Equal(t, "failed", firstAfter.Status)
	assert.Equal(t, "failed", secondAfter.Status)
}

func TestCleanupService_Run_NoStaleUploadsIsNoop(t *testing.T) {
	uploads := newFakeUploadRepository()
	blobs := storage.NewLocalBlobStore(t.TempDir())
	ctx := context.Background()

	fresh := newTestUpload("fresh-only")
	fresh.Status = "pending"
	require.NoError(t, uploads.Create(ctx, fresh))
	uploads.uploads[fresh.ID].UpdatedAt = time.Now()

	service := NewCleanupService(uploads, blobs, 24*3600)
	service.Run(ctx)

	freshAfter, err := uploads.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", freshAfter.Status)
}
