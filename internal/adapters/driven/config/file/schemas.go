package file

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// Ensure SchemaStore implements the interface.
var _ driven.SchemaSource = (*SchemaStore)(nil)

// SchemaDirName is the override directory under the config directory.
const SchemaDirName = "forms"

//go:embed forms/*.toml
var defaultForms embed.FS

// SchemaStore loads form definitions. Built-in forms are embedded in the
// binary; a TOML file in the override directory replaces the built-in form
// with the same name, or adds a new one.
//
// The store does no I/O until Load or Export is called.
type SchemaStore struct {
	dir string
}

// NewSchemaStore creates a schema store reading overrides from dir.
// An empty dir disables overrides.
func NewSchemaStore(dir string) *SchemaStore {
	return &SchemaStore{dir: dir}
}

// Dir returns the override directory.
func (s *SchemaStore) Dir() string {
	return s.dir
}

// Load returns the built-in forms merged with overrides, sorted by name.
func (s *SchemaStore) Load() ([]domain.Schema, error) {
	byName := make(map[string]domain.Schema)

	builtin, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	for _, schema := range builtin {
		byName[schema.Name] = schema
	}

	overrides, err := s.loadDir()
	if err != nil {
		return nil, err
	}
	for _, schema := range overrides {
		if _, ok := byName[schema.Name]; ok {
			logger.Debug("form %s overridden from %s", schema.Name, s.dir)
		}
		byName[schema.Name] = schema
	}

	schemas := make([]domain.Schema, 0, len(byName))
	for _, schema := range byName {
		schemas = append(schemas, schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas, nil
}

// Export writes the built-in forms and a README into dir. Existing files are
// left untouched so local edits survive. It returns the paths written.
func (s *SchemaStore) Export(dir string) ([]string, error) {
	if dir == "" {
		dir = s.dir
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: export directory is empty", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create form directory: %w", err)
	}

	entries, err := fs.ReadDir(defaultForms, SchemaDirName)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := defaultForms.ReadFile(SchemaDirName + "/" + entry.Name())
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return written, fmt.Errorf("write form %s: %w", entry.Name(), err)
		}
		written = append(written, path)
	}

	readme := filepath.Join(dir, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		if err := os.WriteFile(readme, []byte(readmeContent), 0600); err != nil {
			return written, err
		}
		written = append(written, readme)
	}
	return written, nil
}

func loadEmbedded() ([]domain.Schema, error) {
	entries, err := fs.ReadDir(defaultForms, SchemaDirName)
	if err != nil {
		return nil, err
	}
	schemas := make([]domain.Schema, 0, len(entries))
	for _, entry := range entries {
		data, err := defaultForms.ReadFile(SchemaDirName + "/" + entry.Name())
		if err != nil {
			return nil, err
		}
		schema, err := decodeSchema(data, entry.Name())
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

func (s *SchemaStore) loadDir() ([]domain.Schema, error) {
	if s.dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read form directory: %w", err)
	}

	var schemas []domain.Schema
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		schema, err := decodeSchema(data, entry.Name())
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

// decodeSchema parses one form file. A file without a name takes the file
// name minus the extension.
func decodeSchema(data []byte, filename string) (domain.Schema, error) {
	var schema domain.Schema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return domain.Schema{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSchema, filename, err)
	}
	if schema.Name == "" {
		schema.Name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if err := schema.Validate(); err != nil {
		return domain.Schema{}, fmt.Errorf("%s: %w", filename, err)
	}
	return schema, nil
}

const readmeContent = `# Form Definitions

Each .toml file in this directory defines one form. A file whose name
matches a built-in form replaces it; any other name adds a new form.

## Top-level keys

- name: form identifier used on the command line
- title: label shown in menus and notices
- resource: backend collection path, e.g. clinic-visits
- sync_patient: upsert employee master data on submit

## Tables

- [[fields]]: name, label, kind (text, number, bool, date, datetime,
  identifier), required, read_only, suggest, dropdown
- [[lists]]: name, label, scalar, keep_one, [[lists.fields]],
  [[lists.children]]
- [[blocks]]: name, gate, fields, lists
- [[derivations]]: target, start, end, rule (inclusive_floor or ceil)
- [lookup]: trigger and a [lookup.fields] map of patient attribute to field

Run "hisforms forms list" after editing to check the files load.
`
