package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
)

// ValidateImportSchema checks the seed for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	userIDs := make(map[string]bool)
	errs = append(errs, validateUsers(schema.Users, userIDs)...)
	errs = append(errs, validateTasks(schema.Tasks, userIDs)...)

	return errs
}

func validateUsers(users []UserImport, ids map[string]bool) []error {
	var errs []error

	for i, u := range users {
		prefix := fmt.Sprintf("users[%d]", i)
		if strings.TrimSpace(u.ID) == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
			continue
		}
		if ids[u.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate user %q", prefix, u.ID))
		}
		ids[u.ID] = true
		if u.Role != "" {
			if _, err := domain.ParseRole(u.Role); err != nil {
				errs = append(errs, fmt.Errorf("%s.role: invalid value %q", prefix, u.Role))
			}
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport, userIDs map[string]bool) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.ID) == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if seen[t.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate task %q", prefix, t.ID))
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.ProjectID) == "" {
			errs = append(errs, fmt.Errorf("%s.project_id is required", prefix))
		}

		assigned := make(map[string]bool)
		for _, a := range t.Assignees {
			if !userIDs[a] {
				errs = append(errs, fmt.Errorf("%s.assignees: unknown user %q", prefix, a))
			}
			if assigned[a] {
				errs = append(errs, fmt.Errorf("%s.assignees: %q listed twice", prefix, a))
			}
			assigned[a] = true
		}
	}

	return errs
}
