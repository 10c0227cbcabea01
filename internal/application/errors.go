package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnknownKind      = errors.New("unknown item kind")
	ErrNotReady         = errors.New("navigation not bootstrapped")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError names the key and tree a lookup failed in
type NotFoundError struct {
	Key  string
	Tree string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in %s tree", e.Key, e.Tree)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MoveError represents a structural change the tree refused
type MoveError struct {
	SourceKey string
	DestKey   string
	Reason    string
}

func (e *MoveError) Error() string {
	dest := e.DestKey
	if dest == "" {
		dest = "top level"
	}
	return fmt.Sprintf("cannot move %s to %s: %s", e.SourceKey, dest, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrInvalidOperation
}
