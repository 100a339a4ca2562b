// Package usecases wires the domain repositories and infrastructure
// adapters into the operations the HTTP delivery layer calls.
package usecases

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/checksum"
	"catalog-ingest/internal/infrastructure/processor"
	"catalog-ingest/internal/infrastructure/queue"
	"catalog-ingest/pkg/constants"
	coreerrors "catalog-ingest/pkg/errors"
	"catalog-ingest/pkg/file"
)

const (
	minTotalChunks = 1
	maxTotalChunks = 10000
	minTotalSize   = 1
	maxTotalSize   = 5 * 1024 * 1024 * 1024
	minChunkSize   = 5 * 1024
	maxChunkSize   = 100 * 1024 * 1024
)

type ChunkStatus struct {
	UploadID       uuid.UUID
	UploadedChunks int
	TotalChunks    int
	Progress       float64
	Status         string
}

type CompleteResult struct {
	Upload *entities.Upload
	Images []entities.Image
}

type ResumeInfo struct {
	CanResume       bool
	UploadedIndices []int
	MissingIndices  []int
	Progress        float64
}

// Enqueuer decouples the Upload Engine from a concrete queue client so
// tests can run without Redis.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type UploadEngine struct {
	uploads repositories.UploadRepository
	images  repositories.ImageRepository
	blobs   repositories.BlobStore
	queue   Enqueuer
}

func NewUploadEngine(uploads repositories.UploadRepository, images repositories.ImageRepository, blobs repositories.BlobStore, q Enqueuer) *UploadEngine {
	return &UploadEngine{uploads: uploads, images: images, blobs: blobs, queue: q}
}

func chunkPath(uploadID uuid.UUID, index int) string {
	return fmt.Sprintf("chunks/%s/chunk_%d", uploadID, index)
}

func chunkPrefix(uploadID uuid.UUID) string {
	return fmt.Sprintf("chunks/%s", uploadID)
}

func uploadPath(storedFilename string) string {
	return "uploads/" + storedFilename
}

// Initialize validates the declared upload shape and either returns a
// deduplicated existing Upload or creates a fresh one in status pending.
func (e *UploadEngine) Initialize(ctx context.Context, originalFilename string, totalChunks int, totalSize int64, checksumSHA256, mimeType string) (*entities.Upload, error) {
	if totalChunks < minTotalChunks || totalChunks > maxTotalChunks {
		return nil, coreerrors.Validation(fmt.Sprintf("total_chunks must be between %d and %d", minTotalChunks, maxTotalChunks), "total_chunks")
	}
	if totalSize < minTotalSize || totalSize > maxTotalSize {
		return nil, coreerrors.Validation("total_size must be between 1 byte and 5 GiB", "total_size")
	}
	if !checksum.IsValidSha256Hex(checksumSHA256) {
		return nil, coreerrors.Validation("checksum_sha256 must be 64 hex characters", "checksum_sha256")
	}
	checksumSHA256 = lowerHex(checksumSHA256)

	impliedChunkSize := totalSize / int64(totalChunks)
	if impliedChunkSize < minChunkSize || impliedChunkSize > maxChunkSize {
		return nil, coreerrors.Validation("implied chunk size must be between 5 KiB and 100 MiB", "total_chunks")
	}

	if existing, err := e.uploads.FindCompletedByChecksum(ctx, checksumSHA256); err != nil {
		return nil, coreerrors.StorageError("looking up existing upload", err)
	} else if existing != nil {
		return existing, nil
	}

	u := &entities.Upload{
		ID:               uuid.New(),
		OriginalFilename: originalFilename,
		MimeType:         mimeType,
		TotalSize:        totalSize,
		TotalChunks:      totalChunks,
		ChecksumSHA256:   checksumSHA256,
		Status:           constants.UploadStatusPending,
		ChunkSet:         entities.NewChunkIndices(),
	}
	u.StoredFilename = file.MakeStoredFilename(u.ID.String(), originalFilename)
	if u.MimeType == "" {
		u.MimeType = file.MimeTypeFromExtension(originalFilename)
	}

	if err := e.uploads.Create(ctx, u); err != nil {
		return nil, coreerrors.StorageError("creating upload", err)
	}
	return u, nil
}

// ReceiveChunk ingests one chunk under the Upload's row lock, validating
// its checksum both before and after the storage write.
func (e *UploadEngine) ReceiveChunk(ctx context.Context, uploadID uuid.UUID, chunkIndex int, data []byte, chunkChecksum string) (*ChunkStatus, error) {
	if existing, err := e.uploads.FindByID(ctx, uploadID); err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	} else if existing == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}

	var result ChunkStatus

	err := e.uploads.FindByIDForUpdate(ctx, uploadID, func(u *entities.Upload) error {
		if u.Status == constants.UploadStatusCompleted {
			result = chunkStatusOf(u)
			return nil
		}
		if u.Status == constants.UploadStatusFailed || u.Status == constants.UploadStatusCancelled {
			return coreerrors.StateConflict(fmt.Sprintf("upload is %s", u.Status))
		}
		if chunkIndex < 0 || chunkIndex >= u.TotalChunks {
			return coreerrors.Validation("chunk_index out of range", "chunk_index")
		}

		if u.ChunkSet == nil {
			u.ChunkSet = entities.NewChunkIndices()
		}
		if u.ChunkSet.Has(chunkIndex) {
			result = chunkStatusOf(u)
			return nil
		}

		computed := checksum.Sha256Hex(data)
		if !checksum.ConstantTimeEqualHex(computed, chunkChecksum) {
			return coreerrors.ChecksumMismatch("chunk checksum mismatch")
		}

		path := chunkPath(u.ID, chunkIndex)
		if err := e.blobs.Put(path, bytes.NewReader(data)); err != nil {
			return coreerrors.StorageError("writing chunk", err)
		}

		rc, err := e.blobs.Get(path)
		if err != nil {
			return coreerrors.StorageError("re-reading chunk", err)
		}
		rehash, err := checksum.Sha256HexReader(rc)
		rc.Close()
		if err != nil {
			return coreerrors.StorageError("re-hashing chunk", err)
		}
		if !checksum.ConstantTimeEqualHex(rehash, chunkChecksum) {
			e.blobs.Delete(path)
			return coreerrors.ChecksumMismatch("stored chunk failed integrity check")
		}

		u.ChunkSet.Add(chunkIndex)
		u.UploadedChunks = u.ChunkSet.Len()
		u.Status = constants.UploadStatusUploading

		result = chunkStatusOf(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func chunkStatusOf(u *entities.Upload) ChunkStatus {
	return ChunkStatus{
		UploadID:       u.ID,
		UploadedChunks: u.UploadedChunks,
		TotalChunks:    u.TotalChunks,
		Progress:       progressOf(u.UploadedChunks, u.TotalChunks),
		Status:         u.Status,
	}
}

func progressOf(uploaded, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo2(100 * float64(uploaded) / float64(total))
}

// Complete assembles the chunks in ascending order, verifies the
// whole-file checksum, and optionally dispatches variant generation.
func (e *UploadEngine) Complete(ctx context.Context, uploadID uuid.UUID, generateVariants bool) (*CompleteResult, error) {
	if existing, err := e.uploads.FindByID(ctx, uploadID); err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	} else if existing == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}

	var (
		assembledUpload *entities.Upload
		alreadyDone     bool
		checksumFailed  bool
	)

	err := e.uploads.FindByIDForUpdate(ctx, uploadID, func(u *entities.Upload) error {
		if u.Status == constants.UploadStatusCompleted {
			assembledUpload = u
			alreadyDone = true
			return nil
		}
		if u.Status == constants.UploadStatusFailed || u.Status == constants.UploadStatusCancelled {
			return coreerrors.StateConflict(fmt.Sprintf("upload is %s", u.Status))
		}
		if u.UploadedChunks != u.TotalChunks {
			return coreerrors.Validation("not all chunks have been received", "chunk_index")
		}

		var buf bytes.Buffer
		for i := 0; i < u.TotalChunks; i++ {
			rc, err := e.blobs.Get(chunkPath(u.ID, i))
			if err != nil {
				return coreerrors.StorageError(fmt.Sprintf("reading chunk %d", i), err)
			}
			_, copyErr := buf.ReadFrom(rc)
			rc.Close()
			if copyErr != nil {
				return coreerrors.StorageError(fmt.Sprintf("reading chunk %d", i), copyErr)
			}
		}

		assembled := buf.Bytes()
		computed := checksum.Sha256Hex(assembled)

		if err := e.blobs.Put(uploadPath(u.StoredFilename), bytes.NewReader(assembled)); err != nil {
			return coreerrors.StorageError("writing assembled blob", err)
		}

		if !checksum.ConstantTimeEqualHex(computed, u.ChecksumSHA256) {
			e.blobs.Delete(uploadPath(u.StoredFilename))
			u.Status = constants.UploadStatusFailed
			u.FailureReason = "checksum mismatch"
			checksumFailed = true
			return nil
		}

		now := time.Now()
		u.Status = constants.UploadStatusCompleted
		u.CompletedAt = &now
		e.blobs.DeletePrefix(chunkPrefix(u.ID))

		assembledUpload = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if checksumFailed {
		return nil, coreerrors.ChecksumMismatch("assembled blob checksum does not match declared checksum")
	}

	var images []entities.Image
	if !alreadyDone && generateVariants && file.IsSupportedImageMIME(assembledUpload.MimeType) {
		if e.queue != nil {
			_ = e.queue.Enqueue(ctx, queue.Job{
				Type:        queue.JobGenerateVariants,
				UploadID:    assembledUpload.ID.String(),
				MaxAttempts: 3,
			})
		} else {
			generated, genErr := e.GenerateVariantsNow(ctx, assembledUpload.ID)
			if genErr == nil {
				images = generated
			}
		}
	}

	return &CompleteResult{Upload: assembledUpload, Images: images}, nil
}

// GenerateVariantsNow runs the Variant Generator synchronously against a
// completed Upload's assembled blob. It is called either directly (when
// no queue is configured) or by the background worker handling
// queue.JobGenerateVariants.
func (e *UploadEngine) GenerateVariantsNow(ctx context.Context, uploadID uuid.UUID) ([]entities.Image, error) {
	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}
	if u.Status != constants.UploadStatusCompleted {
		return nil, coreerrors.StateConflict("upload is not completed")
	}

	rc, err := e.blobs.Get(uploadPath(u.StoredFilename))
	if err != nil {
		return nil, coreerrors.StorageError("reading assembled blob", err)
	}
	defer rc.Close()

	outputs, genErrs, err := processor.GenerateVariants(rc)
	if err != nil {
		return nil, coreerrors.Fatal("decoding image for variant generation", err)
	}
	for variant, genErr := range genErrs {
		log.Printf("upload %s: variant %s failed: %v", u.ID, variant, genErr)
	}

	var created []entities.Image
	for _, out := range outputs {
		existing, err := e.images.FindByUploadAndVariant(ctx, u.ID, out.Variant)
		if err != nil {
			log.Printf("upload %s: variant %s: looking up existing image failed: %v", u.ID, out.Variant, err)
			continue
		}
		if existing != nil {
			created = append(created, *existing)
			continue
		}

		ext := file.Ext(u.StoredFilename)
		if ext == "" {
			ext = ".jpg"
		}
		path := fmt.Sprintf("images/%s/%s%s", out.Variant, uuid.New(), ".jpg")
		if err := e.blobs.Put(path, bytes.NewReader(out.Bytes)); err != nil {
			log.Printf("upload %s: variant %s: writing blob failed: %v", u.ID, out.Variant, err)
			continue
		}

		img := &entities.Image{
			ID:        uuid.New(),
			UploadID:  u.ID,
			Variant:   out.Variant,
			Path:      path,
			Width:     out.Width,
			Height:    out.Height,
			SizeBytes: int64(len(out.Bytes)),
			MimeType:  "image/jpeg",
		}
		if err := e.images.Create(ctx, img); err != nil {
			log.Printf("upload %s: variant %s: creating image row failed: %v", u.ID, out.Variant, err)
			continue
		}
		created = append(created, *img)
	}

	return created, nil
}

// RetryMerge retries assembly for an Upload stuck in uploading with every
// chunk already present -- the shape a crash mid-Complete leaves behind.
// Complete's assembly step is itself safe to re-run (it rebuilds the
// assembled blob from the chunks and only transitions status to completed
// once the checksum verifies), so retrying is just
// calling Complete again once the stuck-state precondition is confirmed.
func (e *UploadEngine) RetryMerge(ctx context.Context, uploadID uuid.UUID) (*CompleteResult, error) {
	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}
	if u.Status != constants.UploadStatusUploading {
		return nil, coreerrors.StateConflict("only an upload stuck in uploading can have its merge retried")
	}
	if u.UploadedChunks != u.TotalChunks {
		return nil, coreerrors.Validation("not all chunks have been received", "chunk_index")
	}

	return e.Complete(ctx, uploadID, true)
}

func (e *UploadEngine) Status(ctx context.Context, uploadID uuid.UUID) (*entities.Upload, error) {
	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}
	return u, nil
}

func (e *UploadEngine) Resume(ctx context.Context, uploadID uuid.UUID) (*ResumeInfo, error) {
	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return nil, coreerrors.NotFound("upload not found", nil)
	}

	canResume := u.Status == constants.UploadStatusPending || u.Status == constants.UploadStatusUploading

	uploaded := []int{}
	if u.ChunkSet != nil {
		uploaded = u.ChunkSet.Sorted()
	}

	missing := make([]int, 0, u.TotalChunks-len(uploaded))
	for i := 0; i < u.TotalChunks; i++ {
		if u.ChunkSet == nil || !u.ChunkSet.Has(i) {
			missing = append(missing, i)
		}
	}

	return &ResumeInfo{
		CanResume:       canResume,
		UploadedIndices: uploaded,
		MissingIndices:  missing,
		Progress:        progressOf(u.UploadedChunks, u.TotalChunks),
	}, nil
}

// Cancel marks a pending/uploading Upload cancelled and removes its chunk
// prefix. Already-completed or already-terminal uploads are a no-op.
func (e *UploadEngine) Cancel(ctx context.Context, uploadID uuid.UUID) (bool, error) {
	var cancelled bool

	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return false, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return false, nil
	}

	err = e.uploads.FindByIDForUpdate(ctx, uploadID, func(u *entities.Upload) error {
		if u.Status == constants.UploadStatusCompleted ||
			u.Status == constants.UploadStatusFailed ||
			u.Status == constants.UploadStatusCancelled {
			return nil
		}

		if delErr := e.blobs.DeletePrefix(chunkPrefix(u.ID)); delErr != nil {
			return coreerrors.StorageError("deleting chunk prefix", delErr)
		}

		u.Status = constants.UploadStatusCancelled
		u.FailureReason = "Cancelled"
		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cancelled, nil
}

// VerifyChecksum is only meaningful for a completed Upload; it recomputes
// the assembled blob's digest and compares it constant-time against the
// declared checksum.
func (e *UploadEngine) VerifyChecksum(ctx context.Context, uploadID uuid.UUID) (bool, error) {
	u, err := e.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return false, coreerrors.StorageError("loading upload", err)
	}
	if u == nil {
		return false, coreerrors.NotFound("upload not found", nil)
	}
	if u.Status != constants.UploadStatusCompleted {
		return false, coreerrors.StateConflict("upload is not completed")
	}

	rc, err := e.blobs.Get(uploadPath(u.StoredFilename))
	if err != nil {
		return false, coreerrors.StorageError("reading assembled blob", err)
	}
	defer rc.Close()

	computed, err := checksum.Sha256HexReader(rc)
	if err != nil {
		return false, coreerrors.StorageError("hashing assembled blob", err)
	}

	return checksum.ConstantTimeEqualHex(computed, u.ChecksumSHA256), nil
}

func lowerHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
