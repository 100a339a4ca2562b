package usecases

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/checksum"
	"catalog-ingest/internal/infrastructure/queue"
	"catalog-ingest/pkg/constants"
	coreerrors "catalog-ingest/pkg/errors"
	"catalog-ingest/pkg/file"
)

const localIngestChunkThreshold = 10 * 1024 * 1024 // 10 MiB

// ImageResolver implements the four-step lookup pipeline that turns a
// CSV row's primary_image string into an Image to attach to a Product.
type ImageResolver struct {
	images  repositories.ImageRepository
	uploads repositories.UploadRepository
	engine  *UploadEngine
	queue   Enqueuer
	httpCl  *http.Client
}

func NewImageResolver(images repositories.ImageRepository, uploads repositories.UploadRepository, engine *UploadEngine, q Enqueuer) *ImageResolver {
	return &ImageResolver{
		images:  images,
		uploads: uploads,
		engine:  engine,
		queue:   q,
		httpCl:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ResolveResult reports either an immediately usable Image ID or that
// work was scheduled which will attach the Image later.
type ResolveResult struct {
	ImageID   *uuid.UUID
	Scheduled bool
}

// Resolve runs the four-step pipeline; first hit wins. productSKU identifies
// the row's Product so that work scheduled on the background queue (a
// remote fetch) can attach the resulting Image once it completes.
func (r *ImageResolver) Resolve(ctx context.Context, source, productSKU string) (*ResolveResult, error) {
	basename := file.Basename(source)

	if img, err := r.images.FindOriginalByExactPath(ctx, source); err != nil {
		return nil, coreerrors.StorageError("looking up image by exact path", err)
	} else if img != nil {
		return &ResolveResult{ImageID: &img.ID}, nil
	}

	if img, err := r.images.FindOriginalByPathContains(ctx, basename); err != nil {
		return nil, coreerrors.StorageError("looking up image by path substring", err)
	} else if img != nil {
		return &ResolveResult{ImageID: &img.ID}, nil
	}

	if img, err := r.images.FindOriginalByUploadFilename(ctx, basename); err != nil {
		return nil, coreerrors.StorageError("looking up image by upload filename", err)
	} else if img != nil {
		return &ResolveResult{ImageID: &img.ID}, nil
	}

	if u, err := r.uploads.FindCompletedByOriginalFilename(ctx, basename); err != nil {
		return nil, coreerrors.StorageError("looking up completed upload by filename", err)
	} else if u != nil {
		return r.attachOriginalFor(ctx, u)
	}
	if u, err := r.uploads.FindCompletedByStoredFilenameContains(ctx, basename); err != nil {
		return nil, coreerrors.StorageError("looking up completed upload by stored filename", err)
	} else if u != nil {
		return r.attachOriginalFor(ctx, u)
	}

	if isLocalPath(source) {
		imgID, err := r.ingestLocalPath(ctx, source)
		if err != nil {
			return nil, err
		}
		return &ResolveResult{ImageID: &imgID}, nil
	}

	if isRemoteSource(source) {
		if r.queue == nil {
			return nil, coreerrors.Fatal("no background queue configured for remote image fetch", nil)
		}
		if err := r.queue.Enqueue(ctx, queue.Job{
			Type:        queue.JobURLFetch,
			SourceURL:   source,
			ProductSKU:  productSKU,
			MaxAttempts: 3,
		}); err != nil {
			return nil, coreerrors.Transient("scheduling url fetch", err)
		}
		return &ResolveResult{Scheduled: true}, nil
	}

	return nil, coreerrors.Validation(fmt.Sprintf("primary_image value %q is not a recognized path, URL, or known upload", source), "primary_image")
}

func (r *ImageResolver) attachOriginalFor(ctx context.Context, u *entities.Upload) (*ResolveResult, error) {
	existing, err := r.images.FindByUploadAndVariant(ctx, u.ID, constants.VariantOriginal)
	if err != nil {
		return nil, coreerrors.StorageError("checking for existing original image", err)
	}
	if existing != nil {
		return &ResolveResult{ImageID: &existing.ID}, nil
	}

	img := &entities.Image{
		ID:        uuid.New(),
		UploadID:  u.ID,
		Variant:   constants.VariantOriginal,
		Path:      "uploads/" + u.StoredFilename,
		MimeType:  u.MimeType,
		SizeBytes: u.TotalSize,
	}
	if err := r.images.Create(ctx, img); err != nil {
		return nil, coreerrors.StorageError("creating original image row", err)
	}
	return &ResolveResult{ImageID: &img.ID}, nil
}

func isLocalPath(source string) bool {
	if isRemoteSource(source) {
		return false
	}
	return strings.HasPrefix(source, "/") || strings.Contains(source, ":\\")
}

func isRemoteSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.Contains(source, "://")
}

// ingestLocalPath runs a local filesystem path through the Upload Engine
// synchronously: single chunk if small enough, multiple chunks otherwise.
func (r *ImageResolver) ingestLocalPath(ctx context.Context, path string) (uuid.UUID, error) {
	data, err := readLocalFile(path)
	if err != nil {
		return uuid.Nil, coreerrors.StorageError("reading local image path", err)
	}

	sum := checksum.Sha256Hex(data)
	u, err := r.engine.Initialize(ctx, file.Basename(path), chunkCountFor(len(data)), int64(len(data)), sum, file.MimeTypeFromExtension(path))
	if err != nil {
		return uuid.Nil, err
	}

	if u.Status != constants.UploadStatusCompleted {
		chunkSize := localIngestChunkThreshold
		for i := 0; i*chunkSize < len(data); i++ {
			start := i * chunkSize
			end := start + chunkSize
			if end > len(data) {
				end = len(data)
			}
			chunk := data[start:end]
			if _, err := r.engine.ReceiveChunk(ctx, u.ID, i, chunk, checksum.Sha256Hex(chunk)); err != nil {
				return uuid.Nil, err
			}
		}

		result, err := r.engine.Complete(ctx, u.ID, true)
		if err != nil {
			return uuid.Nil, err
		}
		u = result.Upload
	}

	return r.attachOriginalForID(ctx, u)
}

func (r *ImageResolver) attachOriginalForID(ctx context.Context, u *entities.Upload) (uuid.UUID, error) {
	res, err := r.attachOriginalFor(ctx, u)
	if err != nil {
		return uuid.Nil, err
	}
	return *res.ImageID, nil
}

func chunkCountFor(size int) int {
	if size <= localIngestChunkThreshold {
		return 1
	}
	n := size / localIngestChunkThreshold
	if size%localIngestChunkThreshold != 0 {
		n++
	}
	return n
}

// FetchRemote downloads source and drives it through the Upload Engine;
// invoked by the worker handling queue.JobURLFetch.
func (r *ImageResolver) FetchRemote(ctx context.Context, source string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return uuid.Nil, coreerrors.Validation("malformed source url", "primary_image")
	}

	resp, err := r.httpCl.Do(req)
	if err != nil {
		return uuid.Nil, coreerrors.Transient("fetching remote image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, coreerrors.Transient(fmt.Sprintf("remote fetch returned status %d", resp.StatusCode), nil)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return uuid.Nil, coreerrors.Transient("reading remote image body", err)
	}
	data := buf.Bytes()

	sum := checksum.Sha256Hex(data)
	u, err := r.engine.Initialize(ctx, file.Basename(source), chunkCountFor(len(data)), int64(len(data)), sum, resp.Header.Get("Content-Type"))
	if err != nil {
		return uuid.Nil, err
	}

	if u.Status != constants.UploadStatusCompleted {
		chunkSize := localIngestChunkThreshold
		for i := 0; i*chunkSize < len(data); i++ {
			start := i * chunkSize
			end := start + chunkSize
			if end > len(data) {
				end = len(data)
			}
			chunk := data[start:end]
			if _, err := r.engine.ReceiveChunk(ctx, u.ID, i, chunk, checksum.Sha256Hex(chunk)); err != nil {
				return uuid.Nil, err
			}
		}

		result, err := r.engine.Complete(ctx, u.ID, true)
		if err != nil {
			return uuid.Nil, err
		}
		u = result.Upload
	}

	return r.attachOriginalForID(ctx, u)
}
