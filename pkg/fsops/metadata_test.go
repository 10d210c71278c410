package fsops

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPreserveMetadata(t *testing.T) {
	t.Run("copies permission bits", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := createTestFile(t, srcDir, "src.txt", "x")
		if err := os.Chmod(src, 0o741); err != nil {
			t.Fatalf("chmod failed: %v", err)
		}
		dst := createTestFile(t, dstDir, "dst.txt", "x")

		if err := PreserveMetadata(src, dst); err != nil {
			t.Fatalf("PreserveMetadata failed: %v", err)
		}
		info, err := os.Stat(dst)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm() != 0o741 {
			t.Errorf("mode = %o, want 741", info.Mode().Perm())
		}
	})

	t.Run("copies timestamps", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := createTestFile(t, srcDir, "src.txt", "x")
		old := time.Date(2019, 3, 14, 1, 59, 26, 0, time.UTC)
		if err := os.Chtimes(src, old, old); err != nil {
			t.Fatalf("chtimes failed: %v", err)
		}
		dst := createTestFile(t, dstDir, "dst.txt", "x")

		if err := PreserveMetadata(src, dst); err != nil {
			t.Fatalf("PreserveMetadata failed: %v", err)
		}
		info, err := os.Stat(dst)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if !info.ModTime().Equal(old) {
			t.Errorf("mtime = %v, want %v", info.ModTime(), old)
		}
	})

	t.Run("missing source reports error", func(t *testing.T) {
		dir := t.TempDir()
		dst := createTestFile(t, dir, "dst.txt", "x")
		err := PreserveMetadata(filepath.Join(dir, "nope"), dst)
		if !IsKind(err, KindNotFound) {
			t.Errorf("err = %v, want NotFound", err)
		}
	})
}

func TestCopyTreePreservesFileMetadata(t *testing.T) {
	srcDir := t.TempDir()
	src := createTestFile(t, srcDir, "a.txt", "data")
	old := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chmod(src, 0o600); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "a.txt")
	if _, err := CopyTree(src, dst, TreeOptions{}); err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), old)
	}
}
