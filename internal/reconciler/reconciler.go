// Package reconciler diffs scanned filesystem state against the persisted
// catalog and drives the periodic synchronization passes.
package reconciler

import (
	"fmt"
	"os"
	"strings"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"
	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
	"image-catalog/internal/scanner"
)

// PassStats counts classification outcomes for one reconciliation pass.
type PassStats struct {
	Scanned   int
	New       int
	Unchanged int
	Modified  int
}

// Reconciler classifies scanned files against persisted file records and
// emits catalog-mutation intents onto the bus. It never writes to the
// catalog directly.
type Reconciler struct {
	db  *catalog.Database
	bus *events.Bus
}

// New creates a Reconciler emitting onto bus.
func New(db *catalog.Database, bus *events.Bus) *Reconciler {
	return &Reconciler{db: db, bus: bus}
}

// ReconcileDirectory diffs one completed directory listing against the
// catalog. File records for the directory are fetched with a single query
// and matched in memory. Classification per file:
//
//	no record           -> enqueue an add intent
//	record, same mtime  -> nothing (the common case, one map lookup)
//	record, new mtime   -> enqueue an update intent
//
// A persistence read failure aborts the directory; health is already
// degraded by the store at that point.
func (r *Reconciler) ReconcileDirectory(base catalog.BasePathEntry, listing scanner.DirectoryListing, stats *PassStats) error {
	subdir := subdirKey(base.Path, listing.Dir)

	records, err := r.db.GetFileRecordsForDirectory(base.ID, subdir)
	if err != nil {
		return fmt.Errorf("failed to load file records for %q: %w", listing.Dir, err)
	}

	known := make(map[string]catalog.FileRecord, len(records))
	for _, rec := range records {
		known[rec.Filename] = rec
	}

	for _, entry := range listing.Entries {
		stats.Scanned++

		change := events.FileChange{
			BasePathID: base.ID,
			Subdir:     subdir,
			Filename:   entry.Filename,
			ModTime:    entry.ModTime,
		}

		rec, found := known[entry.Filename]
		switch {
		case !found:
			stats.New++
			metrics.FilesClassified.WithLabelValues("new").Inc()
			logging.Debug("New file %s/%s under base path %d", subdir, entry.Filename, base.ID)
			r.bus.Enqueue(events.New(events.KindAddFileRecord, change))

		case rec.LastModified == entry.ModTime:
			stats.Unchanged++
			metrics.FilesClassified.WithLabelValues("unchanged").Inc()

		default:
			stats.Modified++
			metrics.FilesClassified.WithLabelValues("modified").Inc()
			logging.Debug("Modified file %s/%s under base path %d (mtime %d -> %d)",
				subdir, entry.Filename, base.ID, rec.LastModified, entry.ModTime)
			r.bus.Enqueue(events.New(events.KindUpdateFileRecord, change))
		}
	}

	return nil
}

// subdirKey normalizes a scanned directory to its catalog key: the path
// with the base root prefix stripped and any leading separator removed.
// Two scans of the same physical directory always produce the same key,
// whether or not the configured base path ends in a separator.
func subdirKey(root, dir string) string {
	sep := string(os.PathSeparator)
	root = strings.TrimRight(root, sep)
	key := strings.TrimPrefix(dir, root)
	return strings.TrimLeft(key, sep)
}
