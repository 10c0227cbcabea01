package application

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "parentKey" -> "parent key")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"key":            "key",
		"parentKey":      "parent key",
		"targetKey":      "target key",
		"contentTypeKey": "content type key",
		"kind":           "kind",
		"relation":       "relation",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ParseKey parses a required item key. The nil UUID is rejected because it
// stands for "no parent".
func ParseKey(fieldName, value string) (uuid.UUID, error) {
	if err := ValidateRequired(fieldName, value); err != nil {
		return uuid.Nil, err
	}
	key, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %s", formatFieldName(fieldName), value),
		}
	}
	if key == uuid.Nil {
		return uuid.Nil, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must not be the nil UUID", formatFieldName(fieldName)),
		}
	}
	return key, nil
}

// ParseOptionalKey parses a key that may be empty. Empty, "-" and the nil
// UUID all mean the top level and yield uuid.Nil.
func ParseOptionalKey(fieldName, value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" {
		return uuid.Nil, nil
	}
	key, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %s", formatFieldName(fieldName), value),
		}
	}
	return key, nil
}

// ParseKind parses an item kind, defaulting to documents when empty.
func ParseKind(value string) (domain.ItemKind, error) {
	if strings.TrimSpace(value) == "" {
		return domain.ItemKindDocument, nil
	}
	kind, err := domain.ParseItemKind(value)
	if err != nil {
		return domain.ItemKindUnknown, &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("expected document or media, got: %s", value),
		}
	}
	return kind, nil
}
