package handlers

import (
	"encoding/base64"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"catalog-ingest/internal/domain/dto"
	"catalog-ingest/internal/usecases"
	coreerrors "catalog-ingest/pkg/errors"
)

type UploadHandler struct {
	engine *usecases.UploadEngine
}

func NewUploadHandler(engine *usecases.UploadEngine) *UploadHandler {
	return &UploadHandler{engine: engine}
}

func envelope(data any) fiber.Map {
	return fiber.Map{"success": true, "data": data}
}

// Initialize
//
// @Summary      Initialize a chunked upload
// @Description  Validates the declared upload shape and creates (or deduplicates) an Upload
// @Tags         Upload
// @Accept       json
// @Produce      json
// @Param        request body dto.InitializeUploadRequest true "Upload parameters"
// @Success      201 {object} dto.InitializeUploadResponse
// @Router       /uploads/initialize [post]
func (h *UploadHandler) Initialize(c *fiber.Ctx) error {
	var req dto.InitializeUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("malformed request body", ""))
	}

	u, err := h.engine.Initialize(c.Context(), req.OriginalFilename, req.TotalChunks, req.TotalSize, req.ChecksumSHA256, req.MimeType)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(envelope(dto.InitializeUploadResponse{
		UploadID:       u.ID.String(),
		Status:         u.Status,
		TotalChunks:    u.TotalChunks,
		UploadedChunks: u.UploadedChunks,
	}))
}

// Chunk
//
// @Summary      Upload one chunk
// @Description  Accepts the chunk bytes either as the multipart file field chunk or as the base64 form value chunk_data
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        upload_id      formData string true  "Upload ID"
// @Param        chunk_index    formData int    true  "Chunk index"
// @Param        checksum       formData string true  "Chunk SHA-256 checksum"
// @Param        chunk          formData file   true  "Chunk bytes"
// @Success      200 {object} dto.ChunkResponse
// @Router       /uploads/chunk [post]
func (h *UploadHandler) Chunk(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.FormValue("upload_id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("upload_id must be a valid uuid", "upload_id"))
	}

	chunkIndex, err := parseQueryInt(c.FormValue("chunk_index"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("chunk_index must be an integer", "chunk_index"))
	}

	checksumValue := c.FormValue("checksum")
	if checksumValue == "" {
		return coreerrors.HandleError(c, coreerrors.Validation("checksum is required", "checksum"))
	}

	data, err := readChunkBytes(c)
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("chunk payload missing or malformed", "chunk"))
	}

	status, err := h.engine.ReceiveChunk(c.Context(), uploadID, chunkIndex, data, checksumValue)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.JSON(envelope(dto.ChunkResponse{
		UploadID:       status.UploadID.String(),
		ChunkIndex:     chunkIndex,
		UploadedChunks: status.UploadedChunks,
		TotalChunks:    status.TotalChunks,
		Progress:       status.Progress,
		Status:         status.Status,
	}))
}

// readChunkBytes accepts either a multipart file field named "chunk" or a
// base64 "chunk_data" form value, so existing base64 clients keep working
// while new clients can use the more efficient multipart form.
func readChunkBytes(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("chunk"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	if encoded := c.FormValue("chunk_data"); encoded != "" {
		return base64.StdEncoding.DecodeString(encoded)
	}

	return nil, io.ErrUnexpectedEOF
}

func parseQueryInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, io.ErrUnexpectedEOF
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, io.ErrUnexpectedEOF
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// Complete
//
// @Summary      Complete an upload
// @Description  Assembles received chunks, verifies the checksum, and optionally dispatches variant generation
// @Tags         Upload
// @Produce      json
// @Param        id   path string true "Upload ID"
// @Param        request body dto.CompleteUploadRequest false "Options"
// @Success      200 {object} dto.CompleteUploadResponse
// @Router       /uploads/{id}/complete [post]
func (h *UploadHandler) Complete(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	var req dto.CompleteUploadRequest
	_ = c.BodyParser(&req)
	generateVariants := true
	if req.GenerateVariants != nil {
		generateVariants = *req.GenerateVariants
	}

	result, err := h.engine.Complete(c.Context(), uploadID, generateVariants)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	images := make([]dto.ImageResponse, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, dto.ImageResponse{
			ID:        img.ID.String(),
			Variant:   img.Variant,
			Path:      img.Path,
			Width:     img.Width,
			Height:    img.Height,
			SizeBytes: img.SizeBytes,
			MimeType:  img.MimeType,
		})
	}

	return c.JSON(envelope(dto.CompleteUploadResponse{
		UploadID:    result.Upload.ID.String(),
		Status:      result.Upload.Status,
		CompletedAt: result.Upload.CompletedAt,
		Images:      images,
	}))
}

// Status
//
// @Summary      Get upload status
// @Tags         Upload
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} dto.UploadStatusResponse
// @Router       /uploads/{id}/status [get]
func (h *UploadHandler) Status(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	u, err := h.engine.Status(c.Context(), uploadID)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	total := u.TotalChunks
	progress := 0.0
	if total > 0 {
		progress = 100 * float64(u.UploadedChunks) / float64(total)
	}

	return c.JSON(envelope(dto.UploadStatusResponse{
		Status:         u.Status,
		Progress:       progress,
		UploadedChunks: u.UploadedChunks,
		TotalChunks:    u.TotalChunks,
		CompletedAt:    u.CompletedAt,
	}))
}

// Resume
//
// @Summary      Get resume information for an in-progress upload
// @Tags         Upload
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} dto.ResumeResponse
// @Router       /uploads/{id}/resume [get]
func (h *UploadHandler) Resume(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	info, err := h.engine.Resume(c.Context(), uploadID)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.JSON(envelope(dto.ResumeResponse{
		CanResume:      info.CanResume,
		UploadedChunks: info.UploadedIndices,
		MissingChunks:  info.MissingIndices,
		Progress:       info.Progress,
	}))
}

// Verify
//
// @Summary      Verify a completed upload's checksum
// @Tags         Upload
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} dto.VerifyChecksumResponse
// @Router       /uploads/{id}/verify [get]
func (h *UploadHandler) Verify(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	valid, err := h.engine.VerifyChecksum(c.Context(), uploadID)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.JSON(envelope(dto.VerifyChecksumResponse{ChecksumValid: valid}))
}

// RetryMerge
//
// @Summary      Retry assembly for an upload stuck mid-merge after a crash
// @Tags         Upload
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} dto.CompleteUploadResponse
// @Router       /uploads/{id}/retry-merge [post]
func (h *UploadHandler) RetryMerge(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	result, err := h.engine.RetryMerge(c.Context(), uploadID)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	images := make([]dto.ImageResponse, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, dto.ImageResponse{
			ID:        img.ID.String(),
			Variant:   img.Variant,
			Path:      img.Path,
			Width:     img.Width,
			Height:    img.Height,
			SizeBytes: img.SizeBytes,
			MimeType:  img.MimeType,
		})
	}

	return c.JSON(envelope(dto.CompleteUploadResponse{
		UploadID:    result.Upload.ID.String(),
		Status:      result.Upload.Status,
		CompletedAt: result.Upload.CompletedAt,
		Images:      images,
	}))
}

// Cancel
//
// @Summary      Cancel an in-progress upload
// @Tags         Upload
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} fiber.Map
// @Router       /uploads/{id}/cancel [delete]
func (h *UploadHandler) Cancel(c *fiber.Ctx) error {
	uploadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return coreerrors.HandleError(c, coreerrors.Validation("id must be a valid uuid", "id"))
	}

	cancelled, err := h.engine.Cancel(c.Context(), uploadID)
	if err != nil {
		return coreerrors.HandleError(c, err)
	}

	return c.JSON(envelope(fiber.Map{"cancelled": cancelled}))
}
