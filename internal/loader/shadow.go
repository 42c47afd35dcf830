package loader

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/postgres"
	"github.com/gdpotter/pgmt/internal/reflect"
	"github.com/gdpotter/pgmt/internal/sqlsplit"
)

// FileObjectMapping records which objects each authored file created,
// in both directions, mirroring original_source's FileToObjectMapping.
type FileObjectMapping struct {
	FileObjects map[string][]objectid.ID
	ObjectFiles map[objectid.ID]string
}

func newFileObjectMapping() *FileObjectMapping {
	return &FileObjectMapping{
		FileObjects: map[string][]objectid.ID{},
		ObjectFiles: map[objectid.ID]string{},
	}
}

func (m *FileObjectMapping) add(path string, id objectid.ID) {
	m.FileObjects[path] = append(m.FileObjects[path], id)
	m.ObjectFiles[id] = path
}

// Load applies the schema directory's ordered files to a scratch (shadow)
// database one at a time, reflecting after each file so every new object
// can be attributed to the file that created it, then returns the final
// reflected catalog with its dependency graph augmented by those file-level
// `-- require:` edges.
func Load(ctx context.Context, shadowDB *sql.DB, targetSchema string, config Config) (*catalog.Catalog, error) {
	ld := New(config)
	files, err := ld.LoadOrderedFiles()
	if err != nil {
		return nil, err
	}

	exec := postgres.New(shadowDB, postgres.DefaultConfig())
	reflector := reflect.New(shadowDB, targetSchema)

	mapping := newFileObjectMapping()

	seen, err := reflector.Reflect(ctx)
	if err != nil {
		return nil, fmt.Errorf("reflect shadow database before load: %w", err)
	}
	seenIDs := seen.AllIDs()

	for _, f := range files {
		if err := applyFile(ctx, exec, f); err != nil {
			return nil, err
		}

		after, err := reflector.Reflect(ctx)
		if err != nil {
			return nil, fmt.Errorf("reflect shadow database after applying %s: %w", f.RelativePath, err)
		}
		afterIDs := after.AllIDs()

		var newIDs []objectid.ID
		for id := range afterIDs {
			if !seenIDs[id] {
				newIDs = append(newIDs, id)
			}
		}
		sort.Slice(newIDs, func(i, j int) bool { return newIDs[i].Less(newIDs[j]) })
		for _, id := range newIDs {
			mapping.add(f.RelativePath, id)
		}
		seenIDs = afterIDs
	}

	final, err := reflector.Reflect(ctx)
	if err != nil {
		return nil, fmt.Errorf("reflect shadow database after load: %w", err)
	}

	augmentation := createDependencyAugmentation(mapping, files)
	final.AugmentFileDependencies(augmentation)
	return final, nil
}

// applyFile splits a file's content into individual statements via
// sqlsplit and executes them one at a time, so a failure is attributed to
// the specific statement and source line that caused it rather than to
// the file as a whole. Falls back to executing the whole
// file as one blob if splitting fails, since a parse error in sqlsplit
// itself (pg_query_go rejects the text) shouldn't mask the underlying SQL
// error the executor would otherwise surface.
func applyFile(ctx context.Context, exec *postgres.Executor, f File) error {
	statements, err := sqlsplit.Split(f.Content)
	if err != nil {
		return exec.ExecuteContent(ctx, f.Content, f.RelativePath, "")
	}
	for _, stmt := range statements {
		source := fmt.Sprintf("%s:%d", f.RelativePath, stmt.StartLine)
		if err := exec.ExecuteContent(ctx, stmt.Text, source, ""); err != nil {
			return err
		}
	}
	return nil
}

// createDependencyAugmentation turns each file's `-- require:` list into
// cross-product dependency edges between the objects the dependent file
// created and the objects the required file created. Grounded on
// original_source/src/catalog/file_dependencies.rs's
// create_dependency_augmentation.
func createDependencyAugmentation(mapping *FileObjectMapping, files []File) map[objectid.ID][]objectid.ID {
	additional := map[objectid.ID][]objectid.ID{}

	for _, f := range files {
		objectsInFile := mapping.FileObjects[f.RelativePath]
		if len(objectsInFile) == 0 {
			continue
		}
		for _, required := range f.Dependencies {
			objectsRequired := mapping.FileObjects[required]
			if len(objectsRequired) == 0 {
				continue
			}
			for _, from := range objectsInFile {
				additional[from] = append(additional[from], objectsRequired...)
			}
		}
	}

	return additional
}
