package catalog

// BasePathEntry is a configured filesystem root under which images are
// tracked. Entries are created administratively and never mutated or
// deleted by the sync engine.
type BasePathEntry struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// FileRecord is the persisted state of one image file, keyed by
// (base path, subdirectory, filename). LastModified is the filesystem
// mtime observed at the last successful sync.
type FileRecord struct {
	ID           int64  `json:"id"`
	BasePathID   int64  `json:"basePathId"`
	Subdir       string `json:"subdir"`
	Filename     string `json:"filename"`
	Hash         string `json:"hash"`
	LastModified int64  `json:"lastModified"`
}
