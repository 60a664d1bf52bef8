package utils

import (
	"errors"
	"regexp"
)

// Transit ids are alphanumeric with underscore, hyphen and dot. Route ids
// such as "N OWL" also carry spaces.
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_. -]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	if id[0] == ' ' || id[len(id)-1] == ' ' {
		return errors.New("id cannot start or end with a space")
	}

	return nil
}

// ValidateIDs validates each named id and collects the failures keyed by
// field name. Empty values are skipped when optional lists their field.
func ValidateIDs(ids map[string]string, optional ...string) map[string][]string {
	skip := make(map[string]bool, len(optional))
	for _, field := range optional {
		skip[field] = true
	}

	fieldErrors := make(map[string][]string)
	for field, id := range ids {
		if id == "" && skip[field] {
			continue
		}
		if err := ValidateID(id); err != nil {
			fieldErrors[field] = append(fieldErrors[field], err.Error())
		}
	}
	return fieldErrors
}
