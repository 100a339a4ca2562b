package usecases

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"catalog-ingest/internal/csvimport"
	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/checksum"
	"catalog-ingest/pkg/constants"
	coreerrors "catalog-ingest/pkg/errors"
)

type ImportOptions struct {
	ValidateOnly   bool
	SkipInvalid    bool
	UpdateExisting bool
}

// DefaultImportOptions matches §4.7: skip_invalid and update_existing
// both default true.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{SkipInvalid: true, UpdateExisting: true}
}

type ImportResult struct {
	ImportLogID uuid.UUID
	Total       int
	Imported    int
	Updated     int
	Invalid     int
	Duplicates  int
	Processed   int
	SuccessRate float64
	Errors      []entities.RowError
}

type ValidateResult struct {
	Valid          bool
	MissingColumns []string
}

type ImportEngine struct {
	products repositories.ProductRepository
	logs     repositories.ImportLogRepository
	resolver *ImageResolver
}

func NewImportEngine(products repositories.ProductRepository, logs repositories.ImportLogRepository, resolver *ImageResolver) *ImportEngine {
	return &ImportEngine{products: products, logs: logs, resolver: resolver}
}

// ValidateHeader parses only the header line and reports missing
// required columns.
func (e *ImportEngine) ValidateHeader(r io.Reader) (*ValidateResult, error) {
	_, err := csvimport.NewReader(r)
	if err == nil {
		return &ValidateResult{Valid: true}, nil
	}

	var missingErr *csvimport.MissingColumnsError
	if asMissingColumns(err, &missingErr) {
		return &ValidateResult{Valid: false, MissingColumns: missingErr.Missing}, nil
	}
	return nil, coreerrors.Validation(fmt.Sprintf("could not read csv header: %v", err), "file")
}

func asMissingColumns(err error, target **csvimport.MissingColumnsError) bool {
	if me, ok := err.(*csvimport.MissingColumnsError); ok {
		*target = me
		return true
	}
	return false
}

// Import streams filename's CSV bytes, validating and upserting Products
// row by row, maintaining an ImportLog for the whole run.
func (e *ImportEngine) Import(ctx context.Context, filename string, r io.Reader, fileHash string, opts ImportOptions) (*ImportResult, error) {
	reader, err := csvimport.NewReader(r)
	if err != nil {
		var missingErr *csvimport.MissingColumnsError
		if asMissingColumns(err, &missingErr) {
			return nil, coreerrors.Validation(fmt.Sprintf("missing required columns: %v", missingErr.Missing), "file")
		}
		return nil, coreerrors.Validation(fmt.Sprintf("could not read csv: %v", err), "file")
	}

	startedAt := time.Now()
	log := &entities.ImportLog{
		ID:        uuid.New(),
		Filename:  filename,
		FileHash:  fileHash,
		Status:    constants.ImportStatusPending,
		StartedAt: startedAt,
	}

	if !opts.ValidateOnly {
		if err := e.logs.Create(ctx, log); err != nil {
			return nil, coreerrors.StorageError("creating import log", err)
		}
		log.Status = constants.ImportStatusProcessing
		if err := e.logs.Update(ctx, log); err != nil {
			return nil, coreerrors.StorageError("updating import log", err)
		}
	}

	result := &ImportResult{ImportLogID: log.ID}
	var rowErrors []entities.RowError

	for {
		row, readErr := reader.Next()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if !opts.SkipInvalid {
				return e.fail(ctx, log, result, rowErrors, startedAt, opts, fmt.Errorf("reading row: %w", readErr))
			}
			result.Total++
			result.Invalid++
			rowErrors = append(rowErrors, entities.RowError{Row: row.Number, Errors: []string{readErr.Error()}})
			continue
		}

		result.Total++

		validated, fieldErrs := csvimport.Validate(row)
		if len(fieldErrs) > 0 {
			result.Invalid++
			rowErrors = append(rowErrors, entities.RowError{Row: row.Number, Errors: fieldErrs})
			if !opts.SkipInvalid {
				return e.fail(ctx, log, result, rowErrors, startedAt, opts, fmt.Errorf("row %d invalid: %v", row.Number, fieldErrs))
			}
			continue
		}

		if opts.ValidateOnly {
			result.Processed++
			continue
		}

		if err := e.upsertRow(ctx, validated, opts, result); err != nil {
			result.Invalid++
			rowErrors = append(rowErrors, entities.RowError{Row: row.Number, Errors: []string{err.Error()}})
			if !opts.SkipInvalid {
				return e.fail(ctx, log, result, rowErrors, startedAt, opts, err)
			}
		}
	}

	if !opts.ValidateOnly {
		result.Processed = result.Imported + result.Updated
	}
	result.SuccessRate = successRate(result.Processed, result.Total)
	result.Errors = rowErrors

	if opts.ValidateOnly {
		return result, nil
	}

	completedAt := time.Now()
	log.TotalRows = result.Total
	log.ImportedRows = result.Imported
	log.UpdatedRows = result.Updated
	log.InvalidRows = result.Invalid
	log.DuplicateRows = result.Duplicates
	log.ErrorDetails = rowErrors
	log.CompletedAt = &completedAt
	log.ProcessingTimeSeconds = completedAt.Sub(startedAt).Seconds()
	if result.Invalid == 0 {
		log.Status = constants.ImportStatusCompleted
	} else {
		log.Status = constants.ImportStatusPartiallyCompleted
	}

	if err := e.logs.Update(ctx, log); err != nil {
		return nil, coreerrors.StorageError("finalizing import log", err)
	}

	return result, nil
}

func (e *ImportEngine) upsertRow(ctx context.Context, row *csvimport.ValidatedRow, opts ImportOptions, result *ImportResult) error {
	existing, err := e.products.FindBySKU(ctx, row.SKU)
	if err != nil {
		return fmt.Errorf("looking up product by sku: %w", err)
	}

	var product *entities.Product
	switch {
	case existing != nil && opts.UpdateExisting:
		existing.Name = row.Name
		existing.Description = row.Description
		existing.Price = row.Price
		existing.StockQuantity = row.StockQuantity
		existing.Status = row.Status
		if err := e.products.Update(ctx, existing); err != nil {
			return fmt.Errorf("updating product: %w", err)
		}
		result.Updated++
		product = existing

	case existing != nil && !opts.UpdateExisting:
		result.Duplicates++
		return nil

	default:
		product = &entities.Product{
			ID:            uuid.New(),
			SKU:           row.SKU,
			Name:          row.Name,
			Description:   row.Description,
			Price:         row.Price,
			StockQuantity: row.StockQuantity,
			Status:        row.Status,
		}
		if err := e.products.Create(ctx, product); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}
		result.Imported++
	}

	// The product row is already committed above; a primary_image that
	// fails to resolve does not make the row invalid, it just leaves
	// primary_image_id unset (or scheduled for later async attachment).
	// Counting it against row validity would double-count a row that
	// already incremented Imported/Updated.
	if row.PrimaryImage != "" && e.resolver != nil {
		resolved, err := e.resolver.Resolve(ctx, row.PrimaryImage, product.SKU)
		if err != nil {
			log.Printf("import: sku %s: resolving primary_image %q failed: %v", row.SKU, row.PrimaryImage, err)
			return nil
		}
		if resolved.ImageID != nil {
			if err := e.products.AttachPrimaryImage(ctx, product.ID, *resolved.ImageID); err != nil {
				log.Printf("import: sku %s: attaching primary image failed: %v", row.SKU, err)
			}
		}
	}

	return nil
}

func (e *ImportEngine) fail(ctx context.Context, log *entities.ImportLog, result *ImportResult, rowErrors []entities.RowError, startedAt time.Time, opts ImportOptions, cause error) (*ImportResult, error) {
	rowErrors = append(rowErrors, entities.RowError{Row: 0, Errors: []string{cause.Error()}})
	result.Errors = rowErrors

	if !opts.ValidateOnly {
		completedAt := time.Now()
		log.Status = constants.ImportStatusFailed
		log.ErrorDetails = rowErrors
		log.CompletedAt = &completedAt
		log.ProcessingTimeSeconds = completedAt.Sub(startedAt).Seconds()
		log.TotalRows = result.Total
		log.ImportedRows = result.Imported
		log.UpdatedRows = result.Updated
		log.InvalidRows = result.Invalid
		log.DuplicateRows = result.Duplicates
		_ = e.logs.Update(ctx, log)
	}

	return nil, coreerrors.Fatal("import aborted on first invalid row", cause)
}

func successRate(processed, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo2(100 * float64(processed) / float64(total))
}

// fileHashOf hashes a CSV upload for the ImportLog's observability field;
// imports are never deduplicated by it (see concurrency model).
func fileHashOf(data []byte) string {
	return checksum.Sha256Hex(data)
}
