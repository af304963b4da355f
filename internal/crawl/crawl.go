// Package crawl discovers the mappable source files of a repository. It
// walks the tree, skips ignored and excluded directories, and reports each
// file with its detected language. The crawler also diffs the discovered set
// against previously known paths so deletions propagate into the graph.
package crawl

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codeatlas/internal/extract"
	"github.com/dusk-indust/codeatlas/internal/graph"
)

// File is one discovered source file, with its repo-relative path.
type File struct {
	Path     string
	Language graph.Language
}

// Crawler walks repositories for source files in the configured languages.
type Crawler struct {
	languages   map[graph.Language]bool
	excludeDirs map[string]bool
	log         *slog.Logger
}

// New builds a Crawler. An empty languages list means all supported
// languages. Directory names in excludeDirs are skipped wherever they occur;
// .git is always skipped.
func New(languages []graph.Language, excludeDirs []string, log *slog.Logger) *Crawler {
	langSet := make(map[graph.Language]bool)
	if len(languages) == 0 {
		for _, l := range graph.SupportedLanguages {
			langSet[l] = true
		}
	} else {
		for _, l := range languages {
			langSet[l] = true
		}
	}
	excludeSet := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excludeSet[d] = true
	}
	return &Crawler{languages: langSet, excludeDirs: excludeSet, log: log}
}

// Crawl walks root and returns the discovered files sorted by path. A
// .gitignore at the repository root is honored when present. Unreadable
// entries are skipped, not fatal.
func (c *Crawler) Crawl(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = gi
	}

	var files []File
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if name == ".git" || c.excludeDirs[name] {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		lang := extract.DetectLanguage(rel)
		if lang == "" || !c.languages[lang] {
			return nil
		}

		files = append(files, File{Path: rel, Language: lang})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	c.log.Debug("crawl complete", "root", root, "files", len(files))
	return files, nil
}

// Diff returns the previously known paths that are absent from the current
// crawl, sorted. These are the files a mapping run must remove.
func Diff(known []string, current []File) []string {
	present := make(map[string]bool, len(current))
	for _, f := range current {
		present[f.Path] = true
	}
	var removed []string
	for _, p := range known {
		if !present[p] {
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	return removed
}
