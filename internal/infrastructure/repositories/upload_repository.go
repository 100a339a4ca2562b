package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
)

type GormUploadRepository struct {
	db *gorm.DB
}

func NewGormUploadRepository(db *gorm.DB) *GormUploadRepository {
	return &GormUploadRepository{db: db}
}

func (r *GormUploadRepository) Create(ctx context.Context, u *entities.Upload) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating upload: %w", err)
	}
	return nil
}

func (r *GormUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Upload, error) {
	var u entities.Upload
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding upload: %w", err)
	}
	return &u, nil
}

// FindByIDForUpdate locks the row with SELECT ... FOR UPDATE for the
// lifetime of the transaction, so two concurrent receive_chunk calls for
// the same upload serialize instead of racing on UploadedChunks.
func (r *GormUploadRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID, fn func(u *entities.Upload) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u entities.Upload
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("upload %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("locking upload: %w", err)
		}

		if err := fn(&u); err != nil {
			return err
		}

		if err := tx.Save(&u).Error; err != nil {
			return fmt.Errorf("saving upload: %w", err)
		}
		return nil
	})
}

func (r *GormUploadRepository) FindCompletedByChecksum(ctx context.Context, checksum string) (*entities.Upload, error) {
	var u entities.Upload
	err := r.db.WithContext(ctx).
		Where("checksum_sha256 = ? AND status = ?", checksum, "completed").
		Order("created_at DESC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding upload by checksum: %w", err)
	}
	return &u, nil
}

func (r *GormUploadRepository) FindCompletedByOriginalFilename(ctx context.Context, filename string) (*entities.Upload, error) {
	var u entities.Upload
	err := r.db.WithContext(ctx).
		Where("original_filename = ? AND status = ?", filename, "completed").
		Order("created_at DESC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding upload by original filename: %w", err)
	}
	return &u, nil
}

func (r *GormUploadRepository) FindCompletedByStoredFilenameContains(ctx context.Context, substr string) (*entities.Upload, error) {
	var u entities.Upload
	err := r.db.WithContext(ctx).
		Where("stored_filename LIKE ? AND status = ?", "%"+substr+"%", "completed").
		Order("created_at DESC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding upload by stored filename: %w", err)
	}
	return &u, nil
}

func (r *GormUploadRepository) Update(ctx context.Context, u *entities.Upload) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("updating upload: %w", err)
	}
	return nil
}

func (r *GormUploadRepository) ListStale(ctx context.Context, cutoffSeconds int64) ([]entities.Upload, error) {
	cutoff := time.Now().Add(-time.Duration(cutoffSeconds) * time.Second)
	var uploads []entities.Upload
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{"pending", "uploading"}, cutoff).
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("listing stale uploads: %w", err)
	}
	return uploads, nil
}

var _ repositories.UploadRepository = (*GormUploadRepository)(nil)
