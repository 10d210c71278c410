package fsops

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// buildTree creates a three-level source tree:
//
//	root/top.txt
//	root/sub/mid.txt
//	root/sub/deep/leaf.txt
//	root/sub/link -> mid.txt
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	createTestFile(t, root, "top.txt", "top")
	if err := os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	createTestFile(t, filepath.Join(root, "sub"), "mid.txt", "mid")
	createTestFile(t, filepath.Join(root, "sub", "deep"), "leaf.txt", "leaf")
	if err := os.Symlink("mid.txt", filepath.Join(root, "sub", "link")); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}
	return root
}

func TestScanTree(t *testing.T) {
	t.Run("directory totals", func(t *testing.T) {
		root := buildTree(t)
		totals, err := ScanTree(root)
		if err != nil {
			t.Fatalf("ScanTree failed: %v", err)
		}
		if totals.Files != 4 {
			t.Errorf("files = %d, want 4", totals.Files)
		}
		// top(3) + mid(3) + leaf(4); the symlink contributes no bytes.
		if totals.Bytes != 10 {
			t.Errorf("bytes = %d, want 10", totals.Bytes)
		}
	})

	t.Run("single file", func(t *testing.T) {
		dir := t.TempDir()
		src := createTestFile(t, dir, "one.txt", "12345")
		totals, err := ScanTree(src)
		if err != nil {
			t.Fatalf("ScanTree failed: %v", err)
		}
		if totals.Files != 1 || totals.Bytes != 5 {
			t.Errorf("totals = %+v, want 1 file / 5 bytes", totals)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := ScanTree(filepath.Join(t.TempDir(), "nope"))
		if !IsKind(err, KindNotFound) {
			t.Errorf("err = %v, want NotFound", err)
		}
	})
}

func TestCopyTree(t *testing.T) {
	t.Run("copies nested tree and recreates symlinks", func(t *testing.T) {
		root := buildTree(t)
		dst := filepath.Join(t.TempDir(), "out")

		var files int
		stamps, err := CopyTree(root, dst, TreeOptions{
			OnFile: func(string, int64) { files++ },
		})
		if err != nil {
			t.Fatalf("CopyTree failed: %v", err)
		}
		if files != 4 {
			t.Errorf("completed files = %d, want 4", files)
		}
		if got := readFileContent(t, filepath.Join(dst, "sub", "deep", "leaf.txt")); got != "leaf" {
			t.Errorf("leaf content = %q", got)
		}
		target, err := os.Readlink(filepath.Join(dst, "sub", "link"))
		if err != nil {
			t.Fatalf("destination link missing: %v", err)
		}
		if target != "mid.txt" {
			t.Errorf("link target = %q, want mid.txt", target)
		}
		if stamps.Len() != 3 {
			t.Errorf("dir stamps = %d, want 3", stamps.Len())
		}
	})

	t.Run("conflict skip leaves destination untouched", func(t *testing.T) {
		root := buildTree(t)
		dst := filepath.Join(t.TempDir(), "out")
		if err := os.MkdirAll(filepath.Join(dst, "sub"), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		createTestFile(t, filepath.Join(dst, "sub"), "mid.txt", "keep me")

		var conflicts, files int
		_, err := CopyTree(root, dst, TreeOptions{
			Conflict: func(src, dst string) (ConflictAction, string) {
				conflicts++
				return ConflictSkip, ""
			},
			OnFile: func(string, int64) { files++ },
		})
		if err != nil {
			t.Fatalf("CopyTree failed: %v", err)
		}
		if conflicts != 1 {
			t.Errorf("conflicts = %d, want 1", conflicts)
		}
		// The skipped entry is not counted as processed.
		if files != 3 {
			t.Errorf("completed files = %d, want 3", files)
		}
		if got := readFileContent(t, filepath.Join(dst, "sub", "mid.txt")); got != "keep me" {
			t.Errorf("conflicting file overwritten: %q", got)
		}
	})

	t.Run("conflict rename re-enters with substitute name", func(t *testing.T) {
		srcDir := t.TempDir()
		src := createTestFile(t, srcDir, "a.txt", "fresh")
		dstDir := t.TempDir()
		createTestFile(t, dstDir, "a.txt", "original")

		_, err := CopyTree(src, filepath.Join(dstDir, "a.txt"), TreeOptions{
			Conflict: func(string, string) (ConflictAction, string) {
				return ConflictRename, "a (copy).txt"
			},
		})
		if err != nil {
			t.Fatalf("CopyTree failed: %v", err)
		}
		if got := readFileContent(t, filepath.Join(dstDir, "a.txt")); got != "original" {
			t.Errorf("original clobbered: %q", got)
		}
		if got := readFileContent(t, filepath.Join(dstDir, "a (copy).txt")); got != "fresh" {
			t.Errorf("renamed copy content = %q", got)
		}
	})

	t.Run("conflict overwrite replaces destination", func(t *testing.T) {
		srcDir := t.TempDir()
		src := createTestFile(t, srcDir, "a.txt", "fresh")
		dstDir := t.TempDir()
		dst := createTestFile(t, dstDir, "a.txt", "original")

		_, err := CopyTree(src, dst, TreeOptions{
			Conflict: func(string, string) (ConflictAction, string) {
				return ConflictOverwrite, ""
			},
		})
		if err != nil {
			t.Fatalf("CopyTree failed: %v", err)
		}
		if got := readFileContent(t, dst); got != "fresh" {
			t.Errorf("destination = %q, want fresh", got)
		}
	})

	t.Run("cancel stops at entry boundary", func(t *testing.T) {
		root := buildTree(t)
		dst := filepath.Join(t.TempDir(), "out")

		var files int
		cancelled := false
		_, err := CopyTree(root, dst, TreeOptions{
			OnFile: func(string, int64) {
				files++
				if files >= 1 {
					cancelled = true
				}
			},
			Cancel: func() bool { return cancelled },
		})
		if err != ErrCancelled {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
		if countTempFiles(t, dst) != 0 {
			t.Error("temp artifact left after cancellation")
		}
	})

	t.Run("per-entry errors continue when handler allows", func(t *testing.T) {
		root := buildTree(t)
		// Make one file unreadable so its copy fails.
		if err := os.Chmod(filepath.Join(root, "sub", "mid.txt"), 0o000); err != nil {
			t.Fatalf("chmod failed: %v", err)
		}
		if os.Getuid() == 0 {
			t.Skip("running as root, permission errors are not enforceable")
		}
		t.Cleanup(func() { os.Chmod(filepath.Join(root, "sub", "mid.txt"), 0o644) })

		dst := filepath.Join(t.TempDir(), "out")
		var failed []string
		_, err := CopyTree(root, dst, TreeOptions{
			OnEntryError: func(path string, err error) bool {
				failed = append(failed, path)
				return true
			},
		})
		if err != nil {
			t.Fatalf("CopyTree aborted: %v", err)
		}
		if len(failed) != 1 {
			t.Fatalf("failed entries = %v, want exactly one", failed)
		}
		if got := readFileContent(t, filepath.Join(dst, "sub", "deep", "leaf.txt")); got != "leaf" {
			t.Error("entries after the failure were not processed")
		}
	})
}

func TestDirStampsApply(t *testing.T) {
	root := buildTree(t)
	old := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(root, "sub"), old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "out")
	stamps, err := CopyTree(root, dst, TreeOptions{})
	if err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}
	if err := stamps.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dst, "sub"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("dir mtime = %v, want %v", info.ModTime(), old)
	}
}
