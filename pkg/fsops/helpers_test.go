package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Shared test fixtures.

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file %s: %v", path, err)
	}
	return path
}

func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(content)
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// countTempFiles reports leftover temp artifacts under dir, recursively.
func countTempFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == ".tmp" {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", dir, err)
	}
	return count
}

// failInjector forces failures at the named seams.
type failInjector struct {
	publishErr error
	renameErr  error
}

func (f *failInjector) BeforePublish(src, dst string) error { return f.publishErr }
func (f *failInjector) BeforeRename(src, dst string) error  { return f.renameErr }

var errForced = errors.New("forced failure")
