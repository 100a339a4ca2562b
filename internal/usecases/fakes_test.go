package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/queue"
)

// fakeUploadRepository is an in-memory stand-in for GormUploadRepository.
// It deliberately doesn't model real row locking: a single goroutine
// drives each test, so a mutex around a map is enough to satisfy the
// UploadRepository contract.
type fakeUploadRepository struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]*entities.Upload
}

func newFakeUploadRepository() *fakeUploadRepository {
	return &fakeUploadRepository{uploads: make(map[uuid.UUID]*entities.Upload)}
}

func newTestUpload(checksumHex string) *entities.Upload {
	return &entities.Upload{
		ID:               uuid.New(),
		OriginalFilename: "photo.jpg",
		StoredFilename:   "stored_photo.jpg",
		MimeType:         "image/jpeg",
		TotalSize:        1024,
		TotalChunks:      2,
		ChecksumSHA256:   checksumHex,
		Status:           "pending",
		ChunkSet:         entities.NewChunkIndices(),
	}
}

func (r *fakeUploadRepository) Create(ctx context.Context, u *entities.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.uploads[u.ID] = &cp
	return nil
}

func (r *fakeUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUploadRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID, fn func(u *entities.Upload) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[id]
	if !ok {
		return errNotFound(id)
	}
	cp := *u
	if err := fn(&cp); err != nil {
		return err
	}
	r.uploads[id] = &cp
	return nil
}

func (r *fakeUploadRepository) FindCompletedByChecksum(ctx context.Context, checksum string) (*entities.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.uploads {
		if u.Status == "completed" && u.ChecksumSHA256 == checksum {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUploadRepository) FindCompletedByOriginalFilename(ctx context.Context, filename string) (*entities.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.uploads {
		if u.Status == "completed" && u.OriginalFilename == filename {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUploadRepository) FindCompletedByStoredFilenameContains(ctx context.Context, substr string) (*entities.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.uploads {
		if u.Status == "completed" && strings.Contains(u.StoredFilename, substr) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUploadRepository) Update(ctx context.Context, u *entities.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.uploads[u.ID] = &cp
	return nil
}

func (r *fakeUploadRepository) ListStale(ctx context.Context, cutoffSeconds int64) ([]entities.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-time.Duration(cutoffSeconds) * time.Second)
	var stale []entities.Upload
	for _, u := range r.uploads {
		if (u.Status == "pending" || u.Status == "uploading") && u.UpdatedAt.Before(cutoff) {
			stale = append(stale, *u)
		}
	}
	return stale, nil
}

type notFoundError struct{ id uuid.UUID }

func (e *notFoundError) Error() string { return "upload not found: " + e.id.String() }

func errNotFound(id uuid.UUID) error { return &notFoundError{id: id} }

type fakeImageRepository struct {
	mu      sync.Mutex
	images  map[uuid.UUID]*entities.Image
	uploads *fakeUploadRepository // for the upload_filename join in step 1c/1d
}

func newFakeImageRepository(uploads *fakeUploadRepository) *fakeImageRepository {
	return &fakeImageRepository{images: make(map[uuid.UUID]*entities.Image), uploads: uploads}
}

func (r *fakeImageRepository) Create(ctx context.Context, img *entities.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *img
	r.images[img.ID] = &cp
	return nil
}

func (r *fakeImageRepository) FindByUploadAndVariant(ctx context.Context, uploadID uuid.UUID, variant string) (*entities.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.UploadID == uploadID && img.Variant == variant {
			cp := *img
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (r *fakeImageRepository) FindOriginalByExactPath(ctx context.Context, path string) (*entities.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.Variant == "original" && img.Path == path {
			cp := *img
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeImageRepository) FindOriginalByPathContains(ctx context.Context, basename string) (*entities.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.Variant == "original" && strings.Contains(img.Path, basename) {
			cp := *img
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeImageRepository) FindOriginalByUploadFilename(ctx context.Context, basename string) (*entities.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uploads == nil {
		return nil, nil
	}
	r.uploads.mu.Lock()
	defer r.uploads.mu.Unlock()
	for _, img := range r.images {
		if img.Variant != "original" {
			continue
		}
		u, ok := r.uploads.uploads[img.UploadID]
		if !ok {
			continue
		}
		if u.OriginalFilename == basename || strings.Contains(u.StoredFilename, basename) {
			cp := *img
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.images, id)
	return nil
}

type fakeProductRepository struct {
	mu       sync.Mutex
	products map[string]*entities.Product
}

func newFakeProductRepository() *fakeProductRepository {
	return &fakeProductRepository{products: make(map[string]*entities.Product)}
}

func (r *fakeProductRepository) Create(ctx context.Context, p *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.SKU] = &cp
	return nil
}

func (r *fakeProductRepository) Update(ctx context.Context, p *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.SKU] = &cp
	return nil
}

func (r *fakeProductRepository) FindBySKU(ctx context.Context, sku string) (*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[sku]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepository) AttachPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == productID {
			p.PrimaryImageID = &imageID
			return nil
		}
	}
	return nil
}

func (r *fakeProductRepository) ClearPrimaryImageRef(ctx context.Context, imageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.PrimaryImageID != nil && *p.PrimaryImageID == imageID {
			p.PrimaryImageID = nil
		}
	}
	return nil
}

type fakeImportLogRepository struct {
	mu   sync.Mutex
	logs map[uuid.UUID]*entities.ImportLog
}

func newFakeImportLogRepository() *fakeImportLogRepository {
	return &fakeImportLogRepository{logs: make(map[uuid.UUID]*entities.ImportLog)}
}

func (r *fakeImportLogRepository) Create(ctx context.Context, log *entities.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.logs[log.ID] = &cp
	return nil
}

func (r *fakeImportLogRepository) Update(ctx context.Context, log *entities.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.logs[log.ID] = &cp
	return nil
}

func (r *fakeImportLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ImportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	cp := *log
	return &cp, nil
}

func (r *fakeImportLogRepository) List(ctx context.Context, page, perPage int) ([]entities.ImportLog, int64, error) {
	return nil, 0, nil
}

func (r *fakeImportLogRepository) Statistics(ctx context.Context, days int) (repositories.ImportStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repositories.ImportStatistics
	cutoff := time.Now().AddDate(0, 0, -days)
	for _, log := range r.logs {
		if log.StartedAt.Before(cutoff) {
			continue
		}
		stats.TotalImports++
		stats.TotalRows += int64(log.TotalRows)
		stats.TotalImported += int64(log.ImportedRows)
		stats.TotalUpdated += int64(log.UpdatedRows)
		stats.TotalInvalid += int64(log.InvalidRows)
		if log.Status == "failed" {
			stats.TotalFailed++
		}
	}
	return stats, nil
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, job queue.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, job)
	return nil
}
