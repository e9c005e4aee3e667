package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource resolves mapping rules from per-interface JSON files in a
// configured directory. The file for interface "acme-asn" is
// <dir>/acme-asn.json and holds a flat rule array covering every table of
// that interface.
type FileSource struct {
	dir string
}

// NewFileSource creates a rule source reading from dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// ResolveMappingRules loads the interface's rule file and filters it to one
// table. The caller's tenant layer is expected to have resolved the
// interface ID already.
func (s *FileSource) ResolveMappingRules(ctx context.Context, interfaceID, tableName string) ([]Rule, error) {
	path := filepath.Join(s.dir, interfaceID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules for interface %s: %w", interfaceID, err)
	}

	var all []Rule
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse rules for interface %s: %w", interfaceID, err)
	}

	var out []Rule
	for _, r := range all {
		if r.TableName == tableName {
			out = append(out, r)
		}
	}
	return out, nil
}
