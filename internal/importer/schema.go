package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// CatalogSchema is the top-level JSON structure for a course catalog file.
type CatalogSchema struct {
	Courses []CourseImport `json:"courses"`
}

// CourseImport defines one course in the catalog file. Dependencies refer to
// other courses by name: names defined in the same file, or names and ids of
// courses that already exist on the authority.
type CourseImport struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
}

// LoadCatalog reads and parses a course catalog JSON file.
func LoadCatalog(path string) (*CatalogSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema CatalogSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return &schema, nil
}
