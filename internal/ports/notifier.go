package ports

import (
	"context"

	"navindex/internal/domain"
)

// RebuildNotifier broadcasts rebuild requests between processes sharing a store
type RebuildNotifier interface {
	// Publish announces that a tree changed and should be rebuilt
	Publish(ctx context.Context, req domain.RebuildRequest) error

	// Subscribe delivers requests until ctx is cancelled
	Subscribe(ctx context.Context) (<-chan domain.RebuildRequest, error)

	Close() error
}
