package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Upload represents one in-progress or finished blob upload session.
//
// Invariants (enforced by the Upload Engine, not by the database):
//   - UploadedChunks == len(UploadedChunkSet)
//   - UploadedChunkSet is a subset of {0, ..., TotalChunks-1}
//   - Status == completed implies UploadedChunks == TotalChunks and the
//     assembled blob's SHA-256 equals ChecksumSHA256.
//   - Transitions are monotonic: pending -> uploading -> completed|failed|cancelled.
type Upload struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OriginalFilename string       `gorm:"size:500;not null"`
	StoredFilename   string       `gorm:"size:500;not null"`
	MimeType         string       `gorm:"size:100"`
	TotalSize        int64        `gorm:"not null"`
	TotalChunks      int          `gorm:"not null"`
	UploadedChunks   int          `gorm:"not null;default:0"`
	ChecksumSHA256   string       `gorm:"size:64;not null;index"`
	Status           string       `gorm:"size:20;not null;index"`
	FailureReason    string       `gorm:"size:255"`
	ChunkSet         ChunkIndices `gorm:"column:uploaded_chunk_set;type:jsonb;serializer:json"`
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ChunkIndices is the set of chunk indices already received, persisted by
// the json serializer as a JSON object keyed by index. Sorted returns the
// indices in ascending order so resume output is deterministic.
type ChunkIndices map[int]struct{}

func NewChunkIndices() ChunkIndices { return make(ChunkIndices) }

func (c ChunkIndices) Has(idx int) bool {
	_, ok := c[idx]
	return ok
}

func (c ChunkIndices) Add(idx int) { c[idx] = struct{}{} }

func (c ChunkIndices) Len() int { return len(c) }

// Sorted returns the chunk indices in ascending order.
func (c ChunkIndices) Sorted() []int {
	out := make([]int, 0, len(c))
	for idx := range c {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (Upload) TableName() string { return "uploads" }

// Image is one variant (original or resized) derived from an Upload.
// (upload_id, variant) is unique; an Image cannot outlive its Upload.
type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UploadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_upload_variant"`
	Variant   string    `gorm:"size:20;not null;uniqueIndex:idx_upload_variant"`
	Path      string    `gorm:"size:500;not null"`
	Width     int
	Height    int
	SizeBytes int64
	MimeType  string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Image) TableName() string { return "images" }
