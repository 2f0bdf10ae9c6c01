// Package fingerprint identifies and fingerprints image files on disk.
//
// The hash is used for change detection only; it has no collision-resistance
// requirement, so MD5 is deliberately chosen for speed.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP format support

	"image-catalog/internal/filesystem"
	"image-catalog/internal/logging"
)

// hashBlockSize is the read block size used when streaming a file
// through the hash.
const hashBlockSize = 64 * 1024

// IsImage reports whether the file at path decodes as a supported image
// container. Any I/O or decode error means "not an image"; it never fails.
func IsImage(path string) bool {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return false
	}
	defer closeFile(file, path)

	_, _, err = image.DecodeConfig(file)
	return err == nil
}

// Hash streams the file through MD5 in fixed-size blocks and returns the
// hex digest. Callers should check readability first; an unreadable file
// is the only failure mode.
func Hash(path string) (string, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer closeFile(file, path)

	digest := md5.New()
	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(digest, file, buf); err != nil {
		return "", fmt.Errorf("failed to read %s while hashing: %w", path, err)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// IsReadable probes the file by opening it for reading. Returns false on
// any I/O error without raising.
func IsReadable(path string) bool {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return false
	}
	closeFile(file, path)
	return true
}

func closeFile(file *os.File, path string) {
	if err := file.Close(); err != nil {
		logging.Warn("failed to close %s: %v", path, err)
	}
}
