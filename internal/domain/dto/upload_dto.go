package dto

import "time"

type InitializeUploadRequest struct {
	OriginalFilename string `json:"original_filename"`
	TotalChunks      int    `json:"total_chunks"`
	TotalSize        int64  `json:"total_size"`
	ChecksumSHA256   string `json:"checksum_sha256"`
	MimeType         string `json:"mime_type,omitempty"`
}

type InitializeUploadResponse struct {
	UploadID       string `json:"upload_id"`
	Status         string `json:"status"`
	TotalChunks    int    `json:"total_chunks"`
	UploadedChunks int    `json:"uploaded_chunks"`
}

type ChunkResponse struct {
	UploadID       string  `json:"upload_id"`
	ChunkIndex     int     `json:"chunk_index"`
	UploadedChunks int     `json:"uploaded_chunks"`
	TotalChunks    int     `json:"total_chunks"`
	Progress       float64 `json:"progress"`
	Status         string  `json:"status"`
}

type CompleteUploadRequest struct {
	GenerateVariants *bool `json:"generate_variants,omitempty"`
}

type ImageResponse struct {
	ID        string `json:"id"`
	Variant   string `json:"variant"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

type CompleteUploadResponse struct {
	UploadID    string          `json:"upload_id"`
	Status      string          `json:"status"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Images      []ImageResponse `json:"images"`
}

type UploadStatusResponse struct {
	Status         string     `json:"status"`
	Progress       float64    `json:"progress"`
	UploadedChunks int        `json:"uploaded_chunks"`
	TotalChunks    int        `json:"total_chunks"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type ResumeResponse struct {
	CanResume      bool    `json:"can_resume"`
	UploadedChunks []int   `json:"uploaded_chunks"`
	MissingChunks  []int   `json:"missing_chunks"`
	Progress       float64 `json:"progress"`
}

type VerifyChecksumResponse struct {
	ChecksumValid bool `json:"checksum_valid"`
}
