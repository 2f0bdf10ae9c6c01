package reconciler

import (
	"fmt"
	"path/filepath"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"
	"image-catalog/internal/fingerprint"
	"image-catalog/internal/logging"
)

// RegisterHandlers binds the catalog-mutation handlers on the bus. Called
// once at startup; a duplicate registration is a startup-fatal error.
func RegisterHandlers(bus *events.Bus, db *catalog.Database, cache *Cache) error {
	if err := bus.Register(events.KindAddFileRecord, addFileHandler(db, cache)); err != nil {
		return err
	}
	return bus.Register(events.KindUpdateFileRecord, updateFileHandler(db, cache))
}

// addFileHandler applies an add intent. The content hash is recomputed
// here, at mutation time, from the file on disk; a file that vanished
// since the scan is skipped without error.
func addFileHandler(db *catalog.Database, cache *Cache) events.Handler {
	return func(event events.Event) error {
		change, path, err := resolveChange(cache, event)
		if err != nil {
			return err
		}

		hash, err := fingerprint.Hash(path)
		if err != nil {
			logging.Warn("Skipping add for %s: %v", path, err)
			return nil
		}

		if _, err := db.AddFileRecord(change.BasePathID, change.Subdir, change.Filename, hash, change.ModTime); err != nil {
			return err
		}

		logging.Debug("Added file record %s/%s (hash %s)", change.Subdir, change.Filename, hash)
		return nil
	}
}

// updateFileHandler applies an update intent, recomputing the hash the
// same way as an add.
func updateFileHandler(db *catalog.Database, cache *Cache) events.Handler {
	return func(event events.Event) error {
		change, path, err := resolveChange(cache, event)
		if err != nil {
			return err
		}

		hash, err := fingerprint.Hash(path)
		if err != nil {
			logging.Warn("Skipping update for %s: %v", path, err)
			return nil
		}

		if err := db.UpdateFileRecord(change.BasePathID, change.Subdir, change.Filename, hash, change.ModTime); err != nil {
			return err
		}

		logging.Debug("Updated file record %s/%s (hash %s)", change.Subdir, change.Filename, hash)
		return nil
	}
}

// resolveChange extracts the FileChange payload and rebuilds the absolute
// file path from the cached base path root.
func resolveChange(cache *Cache, event events.Event) (events.FileChange, string, error) {
	change, ok := event.Payload.(events.FileChange)
	if !ok {
		return events.FileChange{}, "", fmt.Errorf("event %s carries unexpected payload %T", event.ID, event.Payload)
	}

	base, ok := cache.BasePath(change.BasePathID)
	if !ok {
		return events.FileChange{}, "", fmt.Errorf("event %s references unknown base path %d", event.ID, change.BasePathID)
	}

	return change, filepath.Join(base.Path, change.Subdir, change.Filename), nil
}
