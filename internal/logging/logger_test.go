package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"navindex/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromConfig_RejectsUnknownFormat(t *testing.T) {
	if _, err := FromConfig("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := FromConfig("info", "json"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLogRebuild(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		WithTree(domain.ItemKindMedia, true)
	ctx := context.Background()

	logger.LogRebuild(ctx, &domain.RebuildStats{Nodes: 3, Roots: 1}, nil)
	logger.LogRebuild(ctx, &domain.RebuildStats{Nodes: 3, Orphans: 2}, nil)
	logger.LogRebuild(ctx, nil, errors.New("store offline"))

	out := buf.String()
	for _, want := range []string{
		"rebuild completed",
		"repaired records",
		"store offline",
		"kind=media",
		"trashed=true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
