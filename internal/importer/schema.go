// Package importer loads a directory seed file (users, tasks and their
// assignments) and applies it to the directory store.
package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/tally/internal/domain"
)

// ImportSchema is the top-level JSON structure of a seed file.
type ImportSchema struct {
	Users []UserImport `json:"users"`
	Tasks []TaskImport `json:"tasks"`
}

// UserImport defines one user. Role defaults to employee.
type UserImport struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// TaskImport defines one task and the users assigned to it.
type TaskImport struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Title     string   `json:"title,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// LoadImportSchema reads and parses a seed file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: parsing import file: %v", domain.ErrValidation, err)
	}
	return &schema, nil
}
