package repositories

import (
	"context"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
)

type ImportLogRepository interface {
	Create(ctx context.Context, log *entities.ImportLog) error
	Update(ctx context.Context, log *entities.ImportLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ImportLog, error)
	List(ctx context.Context, page, perPage int) ([]entities.ImportLog, int64, error)
	// Statistics aggregates ImportLogs of any status started within the
	// last `days` days, for GET /imports/statistics.
	Statistics(ctx context.Context, days int) (ImportStatistics, error)
}

type ImportStatistics struct {
	TotalImports  int64
	TotalRows     int64
	TotalImported int64
	TotalUpdated  int64
	TotalInvalid  int64
	TotalFailed   int64
}
