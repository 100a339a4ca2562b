package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"catalog-ingest/internal/csvimport"
	"catalog-ingest/internal/domain/dto"
	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/checksum"
	"catalog-ingest/internal/usecases"
	coreerrors "catalog-ingest/pkg/errors"
)

type ImportHandler struct {
	engine *usecases.ImportEngine
	logs   repositories.ImportLogRepository
}

func NewImportHandler(engine *usecases.ImportEngine, logs repositories.ImportLogRepository) *ImportHandler {
	return &ImportHandler{engine: engine, logs: logs}
}

// Import
//
// @Summary      Bulk-import products from a CSV file
// @Tags         Import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file file true "CSV file"
// @Param        validate_only   formData bool false "Parse and validate only, persist nothing"
// @Param        skip_invalid    formData bool false "Continue past invalid rows instead of aborting (default true)"
// @Param        update_existing formData bool false "Update products with a matching sku instead of marking them duplicate (default true)"
// @Success      200 {object} dto.ImportResultResponse
// @Router       /imports/products [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("file is required", "file"))
	}

	data, err := readFormFile(fh)
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("could not read uploaded file", "file"))
	}

	opts := parseImportOptions(c)
	result, err := h.engine.Import(c.Context(), fh.Filename, bytes.NewReader(data), checksum.Sha256Hex(data), opts)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.JSON(envelope(toImportResultResponse(result)))
}

func parseImportOptions(c *fiber.Ctx) usecases.ImportOptions {
	opts := usecases.DefaultImportOptions()
	if v := c.FormValue("validate_only"); v != "" {
		opts.ValidateOnly, _ = strconv.ParseBool(v)
	}
	if v := c.FormValue("skip_invalid"); v != "" {
		opts.SkipInvalid, _ = strconv.ParseBool(v)
	}
	if v := c.FormValue("update_existing"); v != "" {
		opts.UpdateExisting, _ = strconv.ParseBool(v)
	}
	return opts
}

func toImportResultResponse(r *usecases.ImportResult) dto.ImportResultResponse {
	errs := make([]dto.RowErrorResponse, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, dto.RowErrorResponse{Row: e.Row, Errors: e.Errors})
	}
	return dto.ImportResultResponse{
		ImportLogID: r.ImportLogID.String(),
		Total:       r.Total,
		Imported:    r.Imported,
		Updated:     r.Updated,
		Invalid:     r.Invalid,
		Duplicates:  r.Duplicates,
		Processed:   r.Processed,
		SuccessRate: r.SuccessRate,
		Errors:      errs,
	}
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func toImportLogResponse(l entities.ImportLog) dto.ImportLogResponse {
	return dto.ImportLogResponse{
		ID:                    l.ID.String(),
		Filename:              l.Filename,
		FileHash:              l.FileHash,
		Status:                l.Status,
		TotalRows:             l.TotalRows,
		ImportedRows:          l.ImportedRows,
		UpdatedRows:           l.UpdatedRows,
		InvalidRows:           l.InvalidRows,
		DuplicateRows:         l.DuplicateRows,
		StartedAt:             l.StartedAt,
		CompletedAt:           l.CompletedAt,
		ProcessingTimeSeconds: l.ProcessingTimeSeconds,
	}
}

// Validate
//
// @Summary      Validate a CSV file's header without importing it
// @Tags         Import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file file true "CSV file"
// @Success      200 {object} dto.ValidateImportResponse
// @Failure      422 {object} dto.ValidateImportResponse
// @Router       /imports/products/validate [post]
func (h *ImportHandler) Validate(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("file is required", "file"))
	}

	f, err := fh.Open()
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("could not open uploaded file", "file"))
	}
	defer f.Close()

	result, err := h.engine.ValidateHeader(f)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	status := fiber.StatusOK
	if !result.Valid {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(envelope(dto.ValidateImportResponse{
		Valid:          result.Valid,
		MissingColumns: result.MissingColumns,
	}))
}

// Columns
//
// @Summary      List the recognized CSV columns for a product import
// @Tags         Import
// @Produce      json
// @Success      200 {object} dto.ColumnsResponse
// @Router       /imports/products/columns [get]
func (h *ImportHandler) Columns(c *fiber.Ctx) error {
	required, optional := csvimport.Columns()
	return c.JSON(envelope(dto.ColumnsResponse{
		Columns:    append(append([]string{}, required...), optional...),
		ImportType: "products",
	}))
}

// History
//
// @Summary      List past import runs
// @Tags         Import
// @Produce      json
// @Param        page     query int false "Page number"
// @Param        per_page query int false "Results per page"
// @Success      200 {object} dto.ImportHistoryResponse
// @Router       /imports/history [get]
func (h *ImportHandler) History(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))

	logs, total, err := h.logs.List(c.Context(), page, perPage)
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.StorageError("listing import history", err))
	}

	items := make([]dto.ImportLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, toImportLogResponse(l))
	}

	return c.JSON(envelope(dto.ImportHistoryResponse{
		Imports: items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}))
}

// Get
//
// @Summary      Get a single import run
// @Tags         Import
// @Produce      json
// @Param        id path string true "Import log ID"
// @Success      200 {object} dto.ImportLogResponse
// @Router       /imports/{id} [get]
func (h *ImportHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	log, err := h.logs.FindByID(c.Context(), id)
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.StorageError("loading import log", err))
	}
	if log == nil {
		return coreerrors.HandleError(c, coreerrors.NotFound("import log not found", nil))
	}

	return c.JSON(envelope(toImportLogResponse(*log)))
}

// Statistics
//
// @Summary      Aggregate import statistics over a trailing window
// @Tags         Import
// @Produce      json
// @Param        days query int false "Trailing window in days (default 30)"
// @Success      200 {object} dto.ImportStatisticsResponse
// @Router       /imports/statistics [get]
func (h *ImportHandler) Statistics(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days <= 0 {
		days = 30
	}

	stats, err := h.logs.Statistics(c.Context(), days)
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.StorageError("aggregating import statistics", err))
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	return c.JSON(envelope(dto.ImportStatisticsResponse{
		TotalImports:  stats.TotalImports,
		TotalRows:     stats.TotalRows,
		TotalImported: stats.TotalImported,
		TotalUpdated:  stats.TotalUpdated,
		TotalInvalid:  stats.TotalInvalid,
		TotalFailed:   stats.TotalFailed,
		PeriodFrom:    from.Format(time.RFC3339),
		PeriodTo:      now.Format(time.RFC3339),
	}))
}
