package fsops

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestMovePath(t *testing.T) {
	t.Run("same filesystem rename", func(t *testing.T) {
		dir := t.TempDir()
		src := createTestFile(t, dir, "a.txt", "payload")
		dst := filepath.Join(dir, "b.txt")

		if err := MovePath(src, dst); err != nil {
			t.Fatalf("MovePath failed: %v", err)
		}
		if fileExists(src) {
			t.Error("source still exists after move")
		}
		if got := readFileContent(t, dst); got != "payload" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("cross-device fallback copies then removes source", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := createTestFile(t, srcDir, "a.txt", "payload")
		dst := filepath.Join(dstDir, "a.txt")

		err := MovePath(src, dst, WithInjector(&failInjector{renameErr: syscall.EXDEV}))
		if err != nil {
			t.Fatalf("MovePath failed: %v", err)
		}
		if fileExists(src) {
			t.Error("source still exists after fallback move")
		}
		if got := readFileContent(t, dst); got != "payload" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("cross-device fallback moves directory trees", func(t *testing.T) {
		root := buildTree(t)
		dst := filepath.Join(t.TempDir(), "moved")

		err := MovePath(root, dst, WithInjector(&failInjector{renameErr: syscall.EXDEV}))
		if err != nil {
			t.Fatalf("MovePath failed: %v", err)
		}
		if fileExists(root) {
			t.Error("source tree still exists")
		}
		if got := readFileContent(t, filepath.Join(dst, "sub", "deep", "leaf.txt")); got != "leaf" {
			t.Errorf("leaf content = %q", got)
		}
	})

	t.Run("failed fallback copy preserves source", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := createTestFile(t, srcDir, "a.txt", "payload")
		dst := filepath.Join(dstDir, "a.txt")

		err := MovePath(src, dst, WithInjector(&failInjector{
			renameErr:  syscall.EXDEV,
			publishErr: errForced,
		}))
		if err == nil {
			t.Fatal("expected fallback copy to fail")
		}
		if !fileExists(src) {
			t.Error("source lost after failed fallback copy")
		}
		if fileExists(dst) {
			t.Error("destination exists despite failed copy")
		}
		if countTempFiles(t, dstDir) != 0 {
			t.Error("temp artifact left behind")
		}
	})

	t.Run("cancel during fallback keeps source intact", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := createTestFile(t, srcDir, "big.bin", string(make([]byte, 3*copyChunkSize)))
		dst := filepath.Join(dstDir, "big.bin")

		calls := 0
		err := MovePath(src, dst,
			WithInjector(&failInjector{renameErr: syscall.EXDEV}),
			WithCancel(func() bool {
				calls++
				return calls > 2
			}),
		)
		if err != ErrCancelled {
			t.Fatalf("err = %v, want ErrCancelled", err)
		}
		if !fileExists(src) {
			t.Error("source lost after cancelled fallback")
		}
		if fileExists(dst) {
			t.Error("destination exists after cancelled fallback")
		}
		if countTempFiles(t, dstDir) != 0 {
			t.Error("temp artifact left behind")
		}
	})

	t.Run("non-cross-device rename failure surfaces directly", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "missing")
		err := MovePath(src, filepath.Join(dir, "dst"))
		if err == nil {
			t.Fatal("expected error for missing source")
		}
		if !IsKind(err, KindNotFound) {
			t.Errorf("err = %v, want NotFound", err)
		}
	})
}

func TestRenamePath(t *testing.T) {
	t.Run("renames within parent", func(t *testing.T) {
		dir := t.TempDir()
		src := createTestFile(t, dir, "old.txt", "x")
		if err := RenamePath(src, "new.txt"); err != nil {
			t.Fatalf("RenamePath failed: %v", err)
		}
		if fileExists(src) || !fileExists(filepath.Join(dir, "new.txt")) {
			t.Error("rename did not take effect")
		}
	})

	t.Run("refuses to clobber existing name", func(t *testing.T) {
		dir := t.TempDir()
		src := createTestFile(t, dir, "old.txt", "x")
		createTestFile(t, dir, "taken.txt", "y")
		err := RenamePath(src, "taken.txt")
		if !IsKind(err, KindAlreadyExists) {
			t.Errorf("err = %v, want AlreadyExists", err)
		}
	})
}

func TestResolveTarget(t *testing.T) {
	dir := t.TempDir()
	t.Run("existing directory joins source name", func(t *testing.T) {
		if got := ResolveTarget(dir, "f.txt"); got != filepath.Join(dir, "f.txt") {
			t.Errorf("got %q", got)
		}
	})
	t.Run("trailing separator joins source name", func(t *testing.T) {
		p := filepath.Join(dir, "nonexistent") + string(os.PathSeparator)
		want := filepath.Join(dir, "nonexistent", "f.txt")
		if got := ResolveTarget(p, "f.txt"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
	t.Run("plain path taken literally", func(t *testing.T) {
		p := filepath.Join(dir, "target.txt")
		if got := ResolveTarget(p, "f.txt"); got != p {
			t.Errorf("got %q, want %q", got, p)
		}
	})
}
