package file

import (
	"path/filepath"
	"strings"
)

// MakeStoredFilename derives the durable blob-store filename for a
// completed Upload from its id and original filename, so two uploads of
// files sharing a name never collide under uploads/.
func MakeStoredFilename(uploadID, originalFilename string) string {
	cleanID := strings.TrimPrefix(uploadID, "upload-")
	return cleanID + "_" + filepath.Base(originalFilename)
}

// Basename is filepath.Base, exported under the spec's vocabulary for use
// in the Image-Reference Resolver.
func Basename(path string) string {
	return filepath.Base(path)
}
