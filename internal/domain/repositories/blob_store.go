package repositories

import "io"

// BlobStore is the content-addressed filesystem abstraction shared by the
// Upload Engine and the Variant Generator. Put is whole-object and must be
// atomic with respect to concurrent readers.
type BlobStore interface {
	Put(path string, r io.Reader) error
	Get(path string) (io.ReadCloser, error)
	Exists(path string) bool
	Delete(path string) error
	// PathOnFS returns a local filesystem path for path, when the backend
	// exposes one directly (ok=false for non-local backends such as S3).
	PathOnFS(path string) (fsPath string, ok bool)
	DeletePrefix(prefix string) error
}
