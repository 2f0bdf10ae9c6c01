// Package scanner walks a base path and collects fingerprinted image files
// grouped by directory.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"image-catalog/internal/fingerprint"
	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
)

// Entry is one image file found during a scan pass.
type Entry struct {
	Filename   string
	Hash       string
	ScanTimeMs int64
	ModTime    int64 // filesystem mtime, unix seconds
}

// DirectoryListing groups the image files of a single directory. A listing
// is always complete: the scanner never emits a directory before all of its
// files have been fingerprinted.
type DirectoryListing struct {
	Dir     string
	Entries []Entry
}

// Scanner walks one base path tree.
type Scanner struct {
	root string
}

// New creates a Scanner for the given base path root.
func New(root string) *Scanner {
	return &Scanner{root: root}
}

// Root returns the base path this scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the root recursively and invokes fn once per directory that
// contains at least one readable image; directories with no qualifying
// files are omitted. Cancellation is checked between directories: when ctx
// is done the walk stops early and returns nil (clean truncation, not an
// error). A non-nil error from fn aborts the walk and is returned.
//
// Symlinked directories are followed, but each physical directory is
// visited at most once so symlink cycles terminate.
func (s *Scanner) Scan(ctx context.Context, fn func(DirectoryListing) error) error {
	visited := make(map[string]struct{})
	return s.scanDir(ctx, s.root, visited, fn)
}

func (s *Scanner) scanDir(ctx context.Context, dir string, visited map[string]struct{}, fn func(DirectoryListing) error) error {
	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested during directory scan of %s", s.root)
		return nil
	default:
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		logging.Warn("Skipping unresolvable directory %s: %v", dir, err)
		return nil
	}
	if _, seen := visited[real]; seen {
		logging.Debug("Skipping already-visited directory %s", dir)
		return nil
	}
	visited[real] = struct{}{}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("Skipping unreadable directory %s: %v", dir, err)
		return nil
	}

	var files []Entry
	var subdirs []string

	for _, entry := range dirEntries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}

		// Symlinks to directories are walked too; symlinks to files are
		// fingerprinted like regular files.
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				subdirs = append(subdirs, path)
				continue
			}
		}

		file, ok := s.scanFile(path, entry.Name())
		if !ok {
			continue
		}
		files = append(files, file)
	}

	if len(files) > 0 {
		metrics.FilesScanned.Add(float64(len(files)))
		if err := fn(DirectoryListing{Dir: dir, Entries: files}); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := s.scanDir(ctx, sub, visited, fn); err != nil {
			return err
		}
	}

	return nil
}

// scanFile fingerprints a single file. Unreadable files and non-images are
// skipped without error.
func (s *Scanner) scanFile(path, name string) (Entry, bool) {
	if !fingerprint.IsReadable(path) || !fingerprint.IsImage(path) {
		return Entry{}, false
	}

	hash, err := fingerprint.Hash(path)
	if err != nil {
		// File vanished or became unreadable between probe and hash.
		logging.Warn("Failed to hash %s: %v", path, err)
		return Entry{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		logging.Warn("Failed to stat %s: %v", path, err)
		return Entry{}, false
	}

	logging.Debug("Scanner detected image %q with hash %q", path, hash)

	return Entry{
		Filename:   name,
		Hash:       hash,
		ScanTimeMs: time.Now().UnixMilli(),
		ModTime:    info.ModTime().Unix(),
	}, true
}
