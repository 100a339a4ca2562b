package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
)

type GormImportLogRepository struct {
	db *gorm.DB
}

func NewGormImportLogRepository(db *gorm.DB) *GormImportLogRepository {
	return &GormImportLogRepository{db: db}
}

func (r *GormImportLogRepository) Create(ctx context.Context, log *entities.ImportLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("creating import log: %w", err)
	}
	return nil
}

func (r *GormImportLogRepository) Update(ctx context.Context, log *entities.ImportLog) error {
	if err := r.db.WithContext(ctx).Save(log).Error; err != nil {
		return fmt.Errorf("updating import log: %w", err)
	}
	return nil
}

func (r *GormImportLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ImportLog, error) {
	var log entities.ImportLog
	err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding import log: %w", err)
	}
	return &log, nil
}

func (r *GormImportLogRepository) List(ctx context.Context, page, perPage int) ([]entities.ImportLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.ImportLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting import logs: %w", err)
	}

	var logs []entities.ImportLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing import logs: %w", err)
	}
	return logs, total, nil
}

func (r *GormImportLogRepository) Statistics(ctx context.Context, days int) (repositories.ImportStatistics, error) {
	since := time.Now().AddDate(0, 0, -days)

	var stats repositories.ImportStatistics
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.ImportLog{}).
		Where("started_at >= ?", since).
		Count(&count).Error; err != nil {
		return stats, fmt.Errorf("counting imports: %w", err)
	}
	stats.TotalImports = count

	row := r.db.WithContext(ctx).Model(&entities.ImportLog{}).
		Where("started_at >= ?", since).
		Select(
			"COALESCE(SUM(total_rows),0) AS total_rows",
			"COALESCE(SUM(imported_rows),0) AS total_imported",
			"COALESCE(SUM(updated_rows),0) AS total_updated",
			"COALESCE(SUM(invalid_rows),0) AS total_invalid",
		).Row()

	if err := row.Scan(&stats.TotalRows, &stats.TotalImported, &stats.TotalUpdated, &stats.TotalInvalid); err != nil {
		return stats, fmt.Errorf("aggregating import statistics: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&entities.ImportLog{}).
		Where("started_at >= ? AND status = ?", since, "failed").
		Count(&stats.TotalFailed).Error; err != nil {
		return stats, fmt.Errorf("counting failed imports: %w", err)
	}

	return stats, nil
}

var _ repositories.ImportLogRepository = (*GormImportLogRepository)(nil)
