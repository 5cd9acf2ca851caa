package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

type SearchResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// Search matches live messages by content, newest first.
func Search(ctx context.Context, c *es.Client, query string, limit, offset int) (SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	body, err := json.Marshal(map[string]any{
		"from": max(offset, 0),
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must":     map[string]any{"match": map[string]any{"content": query}},
				"must_not": map[string]any{"term": map[string]any{"deleted": true}},
			},
		},
		"sort":    []any{map[string]any{"timestamp": "desc"}},
		"_source": false,
	})
	if err != nil {
		return SearchResult{}, err
	}

	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(IdxMessages),
		c.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return SearchResult{}, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return SearchResult{}, fmt.Errorf("decode search: %w", err)
	}
	out := SearchResult{Total: parsed.Hits.Total.Value, IDs: make([]string, 0, len(parsed.Hits.Hits))}
	for _, h := range parsed.Hits.Hits {
		out.IDs = append(out.IDs, h.ID)
	}
	return out, nil
}
