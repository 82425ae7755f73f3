package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/config"
	"github.com/zjrosen/airframe/internal/document"
	"github.com/zjrosen/airframe/internal/testutil"
	"github.com/zjrosen/airframe/internal/tracing"
)

const demoPath = "testdata/demo.yaml"

// run executes the CLI with an isolated config file and returns stdout.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: info\n"), 0600))
	return runWithConfig(t, cfgPath, args...)
}

func runWithConfig(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func copyDemo(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(demoPath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestTree(t *testing.T) {
	out, _, err := run(t, "tree", "-f", demoPath)
	require.NoError(t, err)

	assert.Contains(t, out, "model ")
	assert.Contains(t, out, "fuselage")
	assert.Contains(t, out, "wing1")
	assert.Contains(t, out, "intake")
	assert.NotContains(t, out, "naca", "profiles are not positioned")
}

func TestTree_JSON(t *testing.T) {
	out, _, err := run(t, "tree", "-f", demoPath, "--json")
	require.NoError(t, err)

	var dtos []struct {
		UID    string `json:"uid"`
		Parent string `json:"parent"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dtos))

	parents := map[string]string{}
	for _, d := range dtos {
		parents[d.UID] = d.Parent
	}
	assert.Equal(t, "fuselage", parents["wing1"])
	assert.Equal(t, "fuselage", parents["intake"])
	assert.Equal(t, "", parents["fuselage"])
}

func TestTree_NoDocument(t *testing.T) {
	_, _, err := run(t, "tree")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model document at airframe.yaml")
}

func TestTree_StrictPolicy(t *testing.T) {
	path := testutil.NewBuilder(t).
		WithProfile("p", testutil.Square...).
		WithFuselage("f", testutil.Parent("ghost"),
			testutil.Section("s1", "p", document.Vec{}),
			testutil.Section("s2", "p", document.Vec{1, 0, 0})).
		WriteFile()

	out, _, err := run(t, "tree", "-f", path)
	require.NoError(t, err, "lenient draws the orphan as a root")
	assert.Contains(t, out, "ghost")

	_, _, err = run(t, "tree", "-f", path, "--policy", "strict")
	require.Error(t, err)
}

func TestTree_DirectoryDocument(t *testing.T) {
	path := testutil.NewBuilder(t).WithStandardModel().WriteFile()

	out, _, err := run(t, "tree", "-f", filepath.Dir(path))
	require.NoError(t, err)
	assert.Contains(t, out, "wing1")
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "new", dir, "--template", "glider")
	require.NoError(t, err)
	assert.Contains(t, out, "template glider")

	out, _, err = run(t, "tree", "-f", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "main_wing")
	assert.Contains(t, out, "tailplane")

	_, _, err = run(t, "new", dir)
	require.Error(t, err, "refuses to overwrite")

	_, _, err = run(t, "new", filepath.Join(dir, "x.yaml"), "--template", "zeppelin")
	require.ErrorContains(t, err, "unknown template")
}

func TestResolve(t *testing.T) {
	out, _, err := run(t, "resolve", "wing1", "-f", demoPath)
	require.NoError(t, err)

	assert.Contains(t, out, "fuselage")
	assert.Contains(t, out, "x-z")
	assert.Contains(t, out, "origin:")
}

func TestResolve_Unknown(t *testing.T) {
	_, _, err := run(t, "resolve", "nope", "-f", demoPath)
	require.Error(t, err)
}

func TestRename_Diff(t *testing.T) {
	out, _, err := run(t, "rename", "fuselage", "fuselage_main", "--diff", "-f", demoPath)
	require.NoError(t, err)

	assert.Contains(t, out, "+ ")
	assert.Contains(t, out, "- ")
	assert.Contains(t, out, "fuselage_main")
}

func TestRename_PrintsDocument(t *testing.T) {
	out, _, err := run(t, "rename", "naca", "naca2412", "-f", demoPath)
	require.NoError(t, err)

	assert.Contains(t, out, "uid: naca2412")
	assert.Contains(t, out, "profile: naca2412")
	assert.NotContains(t, out, "profile: naca\n")
}

func TestRename_Write(t *testing.T) {
	path := copyDemo(t)

	out, _, err := run(t, "rename", "fuselage", "fuselage_main", "--write", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "renamed fuselage to fuselage_main")

	out, _, err = run(t, "resolve", "wing1", "--json", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"parent": "fuselage_main"`)
}

func TestRename_WriteKeepsNameAndFailedComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glider.yaml")
	src := `name: glider
components:
  - kind: profile
    uid: pod
    points: [[0, -1, 0], [0, 0, 1], [0, 1, 0]]
  - kind: fuselage
    uid: fus
    sections:
      - {uid: fus_a, profile: pod}
      - {uid: fus_b, profile: pod, transform: {translation: [5, 0, 0]}}
  - kind: fuselage
    uid: fus
    sections:
      - {uid: dup_a, profile: pod}
  - kind: wing
    uid: w
    parent: fus
    symmetry: bogus
    sections:
      - {uid: w_root, profile: pod}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	_, stderr, err := run(t, "rename", "fus", "fus2", "--write", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning:")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := document.Parse(f)
	require.NoError(t, err)

	assert.Equal(t, "glider", doc.Name)
	require.Len(t, doc.Components, 4)
	assert.Equal(t, "fus2", doc.Components[1].UID)
	assert.Equal(t, "dup_a", doc.Components[2].Sections[0].UID)
	assert.Equal(t, "bogus", doc.Components[3].Symmetry)
	assert.Equal(t, "fus2", doc.Components[3].Parent)
}

func TestRename_Unique(t *testing.T) {
	out, _, err := run(t, "rename", "naca", "circle", "--unique", "-f", demoPath)
	require.NoError(t, err)
	assert.Contains(t, out, "uid: circle_1")
	assert.Contains(t, out, "profile: circle_1")
}

func TestRename_Duplicate(t *testing.T) {
	_, _, err := run(t, "rename", "naca", "circle", "-f", demoPath)
	require.Error(t, err)
}

func TestShapes(t *testing.T) {
	out, stderr, err := run(t, "shapes", "--json", "--stats", "-f", demoPath)
	require.NoError(t, err)

	var shapes []struct {
		UID      string   `json:"uid"`
		Mirrored bool     `json:"mirrored"`
		Tools    []string `json:"tools"`
		Error    string   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shapes))

	var sawMirror bool
	for _, s := range shapes {
		assert.Empty(t, s.Error, s.UID)
		if s.UID == "fuselage" && !s.Mirrored {
			assert.Equal(t, []string{"intake"}, s.Tools)
		}
		if s.UID == "wing1" && s.Mirrored {
			sawMirror = true
		}
	}
	assert.True(t, sawMirror, "wing1 has x-z symmetry")
	assert.Contains(t, stderr, "kernel cache:")
}

func TestShapes_Table(t *testing.T) {
	out, _, err := run(t, "shapes", "-f", demoPath)
	require.NoError(t, err)
	assert.Contains(t, out, "(mirror)")
	assert.Contains(t, out, "wing1_seg1")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airframe", "config.yaml")

	out, _, err := run(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, _, err = run(t, "init-config", path)
	require.Error(t, err)

	_, _, err = run(t, "init-config", path, "--force")
	require.NoError(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))

	_, _, err := runWithConfig(t, cfgPath, "config", "set", "tree.parent_policy", "strict")
	require.NoError(t, err)

	out, _, err := runWithConfig(t, cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "parent_policy: strict")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Airframe Configuration", "comments are kept")
}

func TestConfigSet_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))
	before, err := os.ReadFile(cfgPath)
	require.NoError(t, err)

	_, _, err = runWithConfig(t, cfgPath, "config", "set", "tree.parent_policy", "sometimes")
	require.Error(t, err)

	after, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestWatchLoop_RebuildsOnChange(t *testing.T) {
	provider, err := tracing.NewProvider(tracing.DefaultConfig())
	require.NoError(t, err)
	a := &app{cfg: config.Defaults(), provider: provider}

	onChange := make(chan struct{}, 1)
	onChange <- struct{}{}
	close(onChange)

	var out bytes.Buffer
	require.NoError(t, a.watchLoop(context.Background(), &out, demoPath, onChange))

	hits, misses := a.geometryKernel().Stats()
	assert.Positive(t, misses)
	assert.Positive(t, hits, "the second build reuses cached shapes")
	assert.Contains(t, out.String(), "wing1")
}

func TestWatchLoop_ReportsModelEvents(t *testing.T) {
	provider, err := tracing.NewProvider(tracing.DefaultConfig())
	require.NoError(t, err)
	a := &app{cfg: config.Defaults(), provider: provider}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.events = newModelEvents(ctx)
	defer a.events.close()

	onChange := make(chan struct{}, 1)
	onChange <- struct{}{}
	close(onChange)

	var out bytes.Buffer
	require.NoError(t, a.watchLoop(ctx, &out, demoPath, onChange))

	lines := strings.Split(out.String(), "\n")
	var reports []string
	for _, line := range lines {
		if strings.HasPrefix(line, "events: ") {
			reports = append(reports, line)
		}
	}
	require.Len(t, reports, 2, "one report per build")
	for _, r := range reports {
		assert.Contains(t, r, "registered")
		assert.Contains(t, r, "tree: 3 nodes, 1 roots, 0 errors")
		assert.NotContains(t, r, "dropped")
	}
}

func TestWatchLoop_Cancelled(t *testing.T) {
	provider, err := tracing.NewProvider(tracing.DefaultConfig())
	require.NoError(t, err)
	a := &app{cfg: config.Defaults(), provider: provider}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, a.watchLoop(ctx, &out, filepath.Join(t.TempDir(), "missing.yaml"), make(chan struct{})))
	assert.Contains(t, out.String(), "error:")
}
