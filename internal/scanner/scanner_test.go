package scanner

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	if err := png.Encode(file, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, s *Scanner) map[string][]Entry {
	t.Helper()

	out := make(map[string][]Entry)
	err := s.Scan(context.Background(), func(listing DirectoryListing) error {
		out[listing.Dir] = listing.Entries
		return nil
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	return out
}

func TestScanGroupsByDirectory(t *testing.T) {
	root := t.TempDir()

	writePNG(t, filepath.Join(root, "top.png"))
	writePNG(t, filepath.Join(root, "2024", "a.png"))
	writePNG(t, filepath.Join(root, "2024", "b.png"))

	listings := collect(t, New(root))

	if len(listings) != 2 {
		t.Fatalf("got %d directories, want 2: %v", len(listings), listings)
	}

	if entries := listings[root]; len(entries) != 1 || entries[0].Filename != "top.png" {
		t.Errorf("root listing = %+v, want one entry top.png", entries)
	}

	sub := filepath.Join(root, "2024")
	if entries := listings[sub]; len(entries) != 2 {
		t.Errorf("subdir listing has %d entries, want 2", len(entries))
	}

	for _, entries := range listings {
		for _, e := range entries {
			if e.Hash == "" {
				t.Errorf("entry %s has empty hash", e.Filename)
			}
			if e.ModTime == 0 {
				t.Errorf("entry %s has zero mtime", e.Filename)
			}
			if e.ScanTimeMs == 0 {
				t.Errorf("entry %s has zero scan time", e.Filename)
			}
		}
	}
}

func TestScanOmitsDirectoriesWithoutImages(t *testing.T) {
	root := t.TempDir()

	writePNG(t, filepath.Join(root, "pics", "a.png"))

	// A directory with only non-image files must not appear.
	docs := filepath.Join(root, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "readme.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	// An empty directory must not appear either.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	listings := collect(t, New(root))

	if _, ok := listings[docs]; ok {
		t.Error("directory with no images was emitted")
	}
	if _, ok := listings[filepath.Join(root, "empty")]; ok {
		t.Error("empty directory was emitted")
	}
	if _, ok := listings[filepath.Join(root, "pics")]; !ok {
		t.Error("directory with images was not emitted")
	}
}

func TestScanSkipsNonImageFiles(t *testing.T) {
	root := t.TempDir()

	writePNG(t, filepath.Join(root, "a.png"))
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	listings := collect(t, New(root))

	entries := listings[root]
	if len(entries) != 1 || entries[0].Filename != "a.png" {
		t.Errorf("entries = %+v, want only a.png", entries)
	}
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a", "one.png"))
	writePNG(t, filepath.Join(root, "b", "two.png"))

	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := New(root).Scan(ctx, func(DirectoryListing) error {
		calls++
		cancel()
		return nil
	})

	// Truncation is not an error.
	if err != nil {
		t.Fatalf("Scan() after cancel returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times after cancellation, want 1", calls)
	}
}

func TestScanSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "sub", "a.png"))

	// sub/loop -> root creates a cycle when followed.
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	listings := collect(t, New(root))

	if len(listings) != 1 {
		t.Errorf("got %d directories, want 1 (cycle must not re-emit)", len(listings))
	}
}
