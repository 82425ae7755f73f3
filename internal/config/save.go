package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveSection replaces one top-level section of the config file with value.
// Comments and formatting in other sections are preserved by editing the
// file as a yaml.Node.
func SaveSection(configPath, key string, value any) error {
	node := &yaml.Node{}
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return update(configPath, []string{key}, node)
}

// SaveTree stores the tree section.
func SaveTree(configPath string, tree TreeConfig) error {
	return SaveSection(configPath, "tree", tree)
}

// SaveKernel stores the kernel section.
func SaveKernel(configPath string, kernel KernelConfig) error {
	return SaveSection(configPath, "kernel", kernel)
}

// SetValue sets a single dotted key such as "tree.parent_policy" to a
// scalar value, creating intermediate mappings as needed.
func SetValue(configPath, dottedKey, value string) error {
	path := strings.Split(dottedKey, ".")
	for _, p := range path {
		if p == "" {
			return fmt.Errorf("invalid key %q", dottedKey)
		}
	}
	return update(configPath, path, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
}

func update(configPath string, path []string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}
	if err := setNode(doc.Content[0], path, value); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// setNode replaces or appends path under mapping.
func setNode(mapping *yaml.Node, path []string, value *yaml.Node) error {
	key := path[0]
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		if len(path) == 1 {
			mapping.Content[i+1] = value
			return nil
		}
		child := mapping.Content[i+1]
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("config key %q is not a mapping", key)
		}
		return setNode(child, path[1:], value)
	}

	if len(path) > 1 {
		child := &yaml.Node{Kind: yaml.MappingNode}
		if err := setNode(child, path[1:], value); err != nil {
			return err
		}
		value = child
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
	return nil
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".airframe.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
