package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/ports"
)

// SearchResult is a key matching a search query
type SearchResult struct {
	Key   uuid.UUID
	Level int
	Score int
}

// SearchCommand finds keys in a tree by fuzzy matching their text form,
// so a user can paste a fragment of a key instead of the whole UUID
type SearchCommand struct {
	registry ports.NavigationRegistry
	Kind     string
	Query    string
	Bin      bool
	Limit    int // Zero means no limit
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(registry ports.NavigationRegistry, kind, query string, bin bool) *SearchCommand {
	return &SearchCommand{
		registry: registry,
		Kind:     kind,
		Query:    query,
		Bin:      bin,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	query := strings.TrimSpace(c.Query)
	if len(query) < 2 {
		return nil, nil
	}

	kind, err := application.ParseKind(c.Kind)
	if err != nil {
		return nil, err
	}
	svc, ok := c.registry.Service(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrUnknownKind, kind)
	}

	results := FuzzySort(allKeys(svc.Tree(c.Bin)), query)
	for i := range results {
		results[i].Level, _ = svc.Tree(c.Bin).Level(results[i].Key)
	}
	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}
	return results, nil
}

// allKeys lists every key of a tree, roots first then each root's subtree.
func allKeys(tree ports.NavigationQueries) []uuid.UUID {
	roots, _ := tree.RootKeys()
	keys := make([]uuid.UUID, 0, tree.Len())
	for _, root := range roots {
		subtree, _ := tree.DescendantOrSelfKeys(root)
		keys = append(keys, subtree...)
	}
	return keys
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Substring matches outrank any fuzzy match
	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: chars must appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -2 // no match yet, so i == 0 is not consecutive

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] != query[queryIdx] {
			continue
		}
		if prevMatchIdx == i-1 {
			score += 10 // consecutive chars
		}
		if i == 0 {
			score += 15
		}
		if i > 0 && target[i-1] == '-' {
			score += 10 // start of a UUID group
		}
		score++
		prevMatchIdx = i
		queryIdx++
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort scores keys against the query, dropping non-matches.
// Higher scores come first; ties keep tree order.
func FuzzySort(keys []uuid.UUID, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(keys))
	for _, k := range keys {
		if score := FuzzyScore(k.String(), query); score > 0 {
			scored = append(scored, SearchResult{Key: k, Score: score})
		}
	}

	slices.SortStableFunc(scored, func(a, b SearchResult) int {
		return b.Score - a.Score
	})
	return scored
}
