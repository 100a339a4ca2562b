// Package checksum computes and compares SHA-256 digests the way the
// Upload Engine requires: constant-time against any client-declared value,
// hex input always lowercased before comparison.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sha256Hex returns the lowercase hex SHA-256 digest of data.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sha256HexReader streams r through SHA-256 without buffering it whole,
// for use on assembled blobs that may be up to 5 GiB.
func Sha256HexReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing reader: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sha256HexFile hashes the file at path.
func Sha256HexFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()
	return Sha256HexReader(f)
}

// ConstantTimeEqualHex compares two hex-encoded digests in constant time,
// lowercasing both first. Unequal-length inputs are never equal but the
// length check itself is not constant-time (ConstantTimeCompare already
// returns 0 for mismatched lengths without branching on content).
func ConstantTimeEqualHex(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if len(la) != len(lb) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(la), []byte(lb)) == 1
}

// IsValidSha256Hex reports whether s matches ^[a-f0-9]{64}$ case-insensitively.
func IsValidSha256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
