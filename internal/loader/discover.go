// Package loader discovers authored .sql files under a schema directory,
// orders them by their `-- require:` declarations, and shadow-applies them
// to a scratch database so the resulting object-to-file attribution can
// augment the reflected catalog's dependency graph.
// Grounded on original_source/src/schema_loader.rs (discovery/ordering) and
// original_source/src/catalog/file_dependencies.rs (file-to-object
// attribution), carried over into the teacher's database/sql + fmt.Errorf
// idiom rather than anyhow.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one authored .sql file: its path relative to the schema root,
// its raw text, and the `.sql`-normalized paths it names via `-- require:`.
type File struct {
	RelativePath string
	Content      string
	Dependencies []string
}

// Config points the Loader at a schema directory.
type Config struct {
	SchemaDir string
}

// Loader discovers, parses, and orders schema files.
type Loader struct {
	config Config
}

func New(config Config) *Loader {
	return &Loader{config: config}
}

// LoadOrderedFiles discovers every .sql file under the schema directory,
// parses its require-headers, and returns them topologically ordered so
// that every file appears after everything it requires.
func (l *Loader) LoadOrderedFiles() ([]File, error) {
	paths, err := l.discoverSQLFiles()
	if err != nil {
		return nil, err
	}
	files, err := l.parseFiles(paths)
	if err != nil {
		return nil, err
	}
	return l.resolveDependencies(files)
}

func (l *Loader) discoverSQLFiles() ([]string, error) {
	schemaDirAbs, err := filepath.Abs(l.config.SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("resolve schema directory: %w", err)
	}
	schemaDirReal, err := filepath.EvalSymlinks(schemaDirAbs)
	if err != nil {
		return nil, fmt.Errorf("resolve schema directory: %w", err)
	}

	var files []string
	err = filepath.WalkDir(l.config.SchemaDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return fmt.Errorf("resolve symlink %s: %w", path, err)
			}
			if !strings.HasPrefix(target, schemaDirReal+string(filepath.Separator)) {
				return fmt.Errorf("symlink points outside schema directory: %s -> %s", path, target)
			}
		}
		if strings.EqualFold(filepath.Ext(path), ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) parseFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", path, err)
		}

		relPath, err := filepath.Rel(l.config.SchemaDir, path)
		if err != nil {
			return nil, fmt.Errorf("file path not within schema directory: %s", path)
		}
		relPath = filepath.ToSlash(relPath)

		deps, err := parseDependencies(string(content))
		if err != nil {
			return nil, err
		}

		files = append(files, File{RelativePath: relPath, Content: string(content), Dependencies: deps})
	}
	return files, nil
}

// parseDependencies extracts `-- require: a.sql, b` header lines, comma-
// splitting each and normalizing the `.sql` suffix onto every entry.
func parseDependencies(content string) ([]string, error) {
	var deps []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(trimmed, "-- require:")
		if !ok {
			continue
		}
		for _, dep := range strings.Split(rest, ",") {
			dep = strings.TrimSpace(dep)
			if dep == "" {
				continue
			}
			deps = append(deps, normalizeDependencyPath(dep))
		}
	}
	return deps, nil
}

func normalizeDependencyPath(dep string) string {
	if !strings.HasSuffix(dep, ".sql") {
		dep += ".sql"
	}
	return dep
}

// resolveDependencies validates every declared dependency exists, then
// orders the files topologically with Kahn's algorithm.
func (l *Loader) resolveDependencies(files []File) ([]File, error) {
	byPath := make(map[string]File, len(files))
	for _, f := range files {
		byPath[f.RelativePath] = f
	}

	for _, f := range files {
		for _, dep := range f.Dependencies {
			if _, ok := byPath[dep]; !ok {
				return nil, fmt.Errorf("missing dependency %q required by %q", dep, f.RelativePath)
			}
		}
	}

	return topologicalSort(files, byPath)
}

func topologicalSort(files []File, byPath map[string]File) ([]File, error) {
	inDegree := make(map[string]int, len(files))
	graph := make(map[string][]string, len(files))
	for _, f := range files {
		inDegree[f.RelativePath] = 0
		if _, ok := graph[f.RelativePath]; !ok {
			graph[f.RelativePath] = nil
		}
	}
	for _, f := range files {
		for _, dep := range f.Dependencies {
			graph[dep] = append(graph[dep], f.RelativePath)
			inDegree[f.RelativePath]++
		}
	}

	var queue []string
	for path, count := range inDegree {
		if count == 0 {
			queue = append(queue, path)
		}
	}
	sort.Strings(queue)

	var ordered []File
	processed := make(map[string]bool, len(files))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if processed[current] {
			continue
		}
		ordered = append(ordered, byPath[current])
		processed[current] = true

		dependents := append([]string(nil), graph[current]...)
		sort.Strings(dependents)
		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sort.Strings(queue)
	}

	if len(ordered) != len(files) {
		var unprocessed []string
		for _, f := range files {
			if !processed[f.RelativePath] {
				unprocessed = append(unprocessed, f.RelativePath)
			}
		}
		sort.Strings(unprocessed)
		return nil, fmt.Errorf("circular dependency detected, files involved: %s", strings.Join(unprocessed, ", "))
	}

	return ordered, nil
}
