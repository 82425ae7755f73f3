// Package paths resolves where a model document lives.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DocumentName is the document looked for when a directory is given.
const DocumentName = "airframe.yaml"

// ResolveDocument resolves a model document path from user input.
//
// Input normalization:
//   - "/path/to/model.yaml" -> "/path/to/model.yaml"
//   - "/path/to/project" (a directory) -> "/path/to/project/airframe.yaml"
//   - "" -> "airframe.yaml"
//
// A directory may hold a .airframe-document file naming the document to use
// instead, relative to the directory.
func ResolveDocument(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		if path == "." {
			return DocumentName
		}
		return path
	}
	return followRedirect(path)
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, ".airframe-document")) //nolint:gosec // fixed name within dir
	if err != nil {
		return filepath.Join(dir, DocumentName)
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return filepath.Join(dir, DocumentName)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(dir, target)
}
