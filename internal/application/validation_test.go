package application

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "key",
			value:     "abc",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "key",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "parentKey",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	valid := uuid.MustParse("6f1c2a3e-8d4b-4c2a-9f1e-2b3c4d5e6f70")

	tests := []struct {
		name    string
		value   string
		want    uuid.UUID
		wantErr string
	}{
		{name: "valid", value: valid.String(), want: valid},
		{name: "surrounding spaces", value: "  " + valid.String() + " ", want: valid},
		{name: "empty", value: "", wantErr: "key is required"},
		{name: "garbage", value: "not-a-uuid", wantErr: "invalid key"},
		{name: "nil uuid", value: uuid.Nil.String(), wantErr: "must not be the nil UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey("key", tt.value)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseOptionalKey(t *testing.T) {
	valid := uuid.MustParse("6f1c2a3e-8d4b-4c2a-9f1e-2b3c4d5e6f70")

	tests := []struct {
		name    string
		value   string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "empty is top level", value: "", want: uuid.Nil},
		{name: "dash is top level", value: "-", want: uuid.Nil},
		{name: "nil uuid is top level", value: uuid.Nil.String(), want: uuid.Nil},
		{name: "valid", value: valid.String(), want: valid},
		{name: "garbage", value: "xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptionalKey("parentKey", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOptionalKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		value   string
		want    domain.ItemKind
		wantErr bool
	}{
		{"", domain.ItemKindDocument, false},
		{"document", domain.ItemKindDocument, false},
		{"content", domain.ItemKindDocument, false},
		{"MEDIA", domain.ItemKindMedia, false},
		{"member", domain.ItemKindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseKind(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMoveError_IsInvalidOperation(t *testing.T) {
	err := error(&MoveError{SourceKey: "a", Reason: "cycle"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Error("expected MoveError to match ErrInvalidOperation")
	}
	if !contains(err.Error(), "top level") {
		t.Errorf("expected empty destination rendered as top level, got %q", err.Error())
	}
}

func TestNotFoundError_IsNotFound(t *testing.T) {
	err := error(&NotFoundError{Key: "k", Tree: "media bin"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected NotFoundError to match ErrNotFound")
	}
	if err.Error() != "k not found in media bin tree" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && findSubstring(s, substr)))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
