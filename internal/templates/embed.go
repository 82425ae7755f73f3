// Package templates holds the starter model documents shipped with the
// binary.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed models/*.yaml
var models embed.FS

// ModelFS returns the embedded model documents, one models/<name>.yaml per
// template.
func ModelFS() fs.FS {
	return models
}

// Names lists the template names in sorted order.
func Names() []string {
	entries, _ := fs.ReadDir(models, "models")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Model returns the document source of the named template.
func Model(name string) ([]byte, error) {
	data, err := fs.ReadFile(models, path.Join("models", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown template %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return data, nil
}
