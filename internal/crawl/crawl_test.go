package crawl

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// writeTree lays out files under dir; map values are file contents.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func testCrawler(languages []graph.Language, excludeDirs []string) *Crawler {
	return New(languages, excludeDirs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func crawlPaths(t *testing.T, c *Crawler, root string) []string {
	t.Helper()
	files, err := c.Crawl(root)
	require.NoError(t, err)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func TestCrawl_FindsSourceFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/b.py":   "x = 1\n",
		"src/a.py":   "y = 2\n",
		"main.go":    "package main\n",
		"README.md":  "# readme\n",
		"web/app.ts": "export {};\n",
	})

	paths := crawlPaths(t, testCrawler(nil, nil), dir)
	assert.Equal(t, []string{"main.go", "src/a.py", "src/b.py", "web/app.ts"}, paths)
}

func TestCrawl_LanguageFilter(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go": "package main\n",
		"tool.py": "pass\n",
		"lib.rs":  "fn main() {}\n",
	})

	paths := crawlPaths(t, testCrawler([]graph.Language{graph.LangPython}, nil), dir)
	assert.Equal(t, []string{"tool.py"}, paths)
}

func TestCrawl_SkipsExcludedAndGitDirs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":                 "package main\n",
		".git/hooks/sample.py":    "pass\n",
		"node_modules/pkg/idx.ts": "export {};\n",
		"vendor/dep/dep.go":       "package dep\n",
	})

	paths := crawlPaths(t, testCrawler(nil, []string{"node_modules", "vendor"}), dir)
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestCrawl_HonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore":     "build/\n*_gen.go\n",
		"main.go":        "package main\n",
		"util_gen.go":    "package main\n",
		"build/out.py":   "pass\n",
		"src/service.py": "pass\n",
	})

	paths := crawlPaths(t, testCrawler(nil, nil), dir)
	assert.Equal(t, []string{"main.go", "src/service.py"}, paths)
}

func TestCrawl_MissingRoot(t *testing.T) {
	_, err := testCrawler(nil, nil).Crawl(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestDiff(t *testing.T) {
	current := []File{{Path: "a.py"}, {Path: "b.py"}}

	removed := Diff([]string{"b.py", "c.py", "a.py", "d.py"}, current)
	assert.Equal(t, []string{"c.py", "d.py"}, removed)

	assert.Empty(t, Diff([]string{"a.py"}, current))
	assert.Empty(t, Diff(nil, current))
}
