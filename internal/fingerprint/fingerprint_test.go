package fingerprint

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a small valid PNG file and returns its path.
func writePNG(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer file.Close()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	return path
}

func TestIsImage(t *testing.T) {
	dir := t.TempDir()

	imgPath := writePNG(t, dir, "valid.png")
	if !IsImage(imgPath) {
		t.Errorf("IsImage(%s) = false, want true", imgPath)
	}

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if IsImage(textPath) {
		t.Errorf("IsImage(%s) = true for a text file", textPath)
	}

	if IsImage(filepath.Join(dir, "missing.jpg")) {
		t.Error("IsImage returned true for a missing file")
	}
}

func TestHash(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Hash(path)
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	// md5("hello world")
	want := "5eb63bbbe01eeed093cb22bb8f5acdc6"
	if got != want {
		t.Errorf("Hash() = %q, want %q", got, want)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := Hash(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := Hash(path)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Error("Hash() returned the same digest for different content")
	}
}

func TestHashMissingFile(t *testing.T) {
	if _, err := Hash(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("Hash() on a missing file: expected error, got nil")
	}
}

func TestIsReadable(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "readable.txt")
	if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !IsReadable(path) {
		t.Errorf("IsReadable(%s) = false, want true", path)
	}

	if IsReadable(filepath.Join(dir, "missing.txt")) {
		t.Error("IsReadable returned true for a missing file")
	}
}
