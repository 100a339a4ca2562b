package file

import "strings"

var supportedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsSupportedImageMIME reports whether the Variant Generator knows how to
// derive resized variants from mime.
func IsSupportedImageMIME(mime string) bool {
	return supportedImageMIMEs[strings.ToLower(mime)]
}

func MimeTypeFromExtension(filename string) string {
	ext := strings.ToLower(Ext(filename))
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the lowercase extension including the leading dot, or "" if
// filename has none.
func Ext(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}
