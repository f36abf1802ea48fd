// Package search implements full-text search over workspace file records
// using an in-memory bleve index built per invocation. Workspaces are small
// (they are project trees the surrounding application manages), so indexing
// on demand is cheaper than keeping an index consistent under concurrent
// tool writes.
package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/Magister-Faceless/agentcore/internal/engine"
	"github.com/Magister-Faceless/agentcore/internal/workspace"
)

const defaultLimit = 10

type fileDoc struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

func searchFilesImpl(ws workspace.Store, query string, limit int) (string, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	recs, err := ws.List("", true)
	if err != nil {
		return "", err
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return "", fmt.Errorf("failed to create search index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for _, rec := range recs {
		if rec.Kind != workspace.KindFile {
			continue
		}
		if err := batch.Index(rec.Path, fileDoc{Path: rec.Path, Name: rec.Name, Content: rec.Content}); err != nil {
			return "", fmt.Errorf("failed to index %s: %w", rec.Path, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return "", fmt.Errorf("failed to build search index: %w", err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	req.Fields = []string{"path"}

	result, err := index.Search(req)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	type hit struct {
		Path  string  `json:"path"`
		Score float64 `json:"score"`
	}
	hits := make([]hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, hit{Path: h.ID, Score: h.Score})
	}

	return engine.Success(map[string]any{
		"query": query,
		"total": result.Total,
		"hits":  hits,
	}), nil
}

// NewSearchFilesTool creates the search_files tool.
func NewSearchFilesTool(ws workspace.Store) engine.Tool {
	return engine.Tool{
		Name:        "search_files",
		Description: "Full-text search across workspace file contents and names. Returns matching file paths ranked by relevance.",
		SchemaJSON:  `{"type":"object","properties":{"query":{"type":"string","description":"Search terms"},"limit":{"type":"integer","description":"Maximum number of hits to return. Default: 10"}},"required":["query"]}`,
		Category:    engine.CategoryCustom,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			query, ok := args["query"].(string)
			if !ok || query == "" {
				return "", fmt.Errorf("query must be a non-empty string")
			}
			limit := 0
			if l, ok := args["limit"].(float64); ok {
				limit = int(l)
			}
			return searchFilesImpl(ws, query, limit)
		},
	}
}
