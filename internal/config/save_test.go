package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, configPath string) Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestSaveTree_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	err := SaveTree(configPath, TreeConfig{ParentPolicy: "strict"})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tree:\n  parent_policy: strict")
}

func TestSaveSection_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# Airframe
document: demo.yaml # the default model
tree:
  parent_policy: lenient
watch:
  debounce: 2s
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0644))

	require.NoError(t, SaveTree(configPath, TreeConfig{ParentPolicy: "strict"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# Airframe")
	assert.Contains(t, content, "# the default model")
	assert.Contains(t, content, "debounce: 2s")
	assert.Contains(t, content, "parent_policy: strict")
	assert.NotContains(t, content, "lenient")
}

func TestSaveKernel_Roundtrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	want := KernelConfig{Cache: false, CacheTTL: 90 * time.Second, CleanupInterval: time.Hour}

	require.NoError(t, SaveKernel(configPath, want))
	require.Equal(t, want, readConfig(t, configPath).Kernel)
}

func TestSetValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	require.NoError(t, SetValue(configPath, "tree.parent_policy", "strict"))
	require.NoError(t, SetValue(configPath, "tracing.exporter", "stdout"))
	require.NoError(t, SetValue(configPath, "document", "models/a.yaml"))

	cfg := readConfig(t, configPath)
	require.Equal(t, "strict", cfg.Tree.ParentPolicy)
	require.Equal(t, "stdout", cfg.Tracing.Exporter)
	require.Equal(t, "models/a.yaml", cfg.Document)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Airframe Configuration", "comments survive")
}

func TestSetValue_Errors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("document: demo.yaml\n"), 0644))

	err := SetValue(configPath, "tree..parent_policy", "strict")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid key")

	err = SetValue(configPath, "document.path", "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not a mapping")

	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0644))
	err = SetValue(configPath, "document", "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a mapping")
}

func TestSave_AtomicWrite(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	require.NoError(t, SaveTree(configPath, TreeConfig{ParentPolicy: "lenient"}))
	require.NoError(t, SaveTree(configPath, TreeConfig{ParentPolicy: "strict"}))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
	require.Equal(t, "config.yaml", entries[0].Name())
}
