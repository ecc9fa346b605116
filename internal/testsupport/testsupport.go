// Package testsupport builds throwaway dataset trees for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates every file in files under root with the given content,
// creating parent directories as needed. Paths use forward slashes.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// WriteFiles creates every listed file under root with placeholder content.
func WriteFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[p] = "x"
	}
	WriteTree(t, root, files)
}

// Exists reports whether the file exists under root.
func Exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
