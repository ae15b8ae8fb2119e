// ABOUTME: Tool pack exposing the corpus as the search and fetch operations.
// ABOUTME: Registered alone on the research server.

package research

import (
	"context"

	"github.com/2389/hiring-router/internal/tools"
)

// PackID identifies the research tool pack.
const PackID = "research"

// SearchResult is returned by the search tool.
type SearchResult struct {
	IDs []string `json:"ids"`
}

// Pack returns the search and fetch tools over c.
func Pack(c *Corpus) *tools.Pack {
	return &tools.Pack{
		ID: PackID,
		Tools: []*tools.Tool{
			{
				Name: "search",
				Description: "Search across the record corpus and return matching IDs. " +
					"Matches any query token, case-insensitively, across title, text and metadata values. " +
					"Returns an empty list when nothing matches; pass returned IDs to fetch.",
				InputSchema: `{
					"type": "object",
					"properties": {
						"query": {"type": "string", "description": "Free-form keywords, phrase or question"}
					},
					"required": ["query"]
				}`,
				Handler: func(_ context.Context, args map[string]any) (any, error) {
					var in struct {
						Query string `json:"query"`
					}
					if err := tools.DecodeArgs(args, &in); err != nil {
						return nil, err
					}
					return SearchResult{IDs: c.Search(in.Query)}, nil
				},
			},
			{
				Name:        "fetch",
				Description: "Fetch a single record by an ID returned from search. Unknown IDs are an error.",
				InputSchema: `{
					"type": "object",
					"properties": {
						"id": {"type": "string", "description": "Record ID"}
					},
					"required": ["id"]
				}`,
				Handler: func(_ context.Context, args map[string]any) (any, error) {
					var in struct {
						ID string `json:"id"`
					}
					if err := tools.DecodeArgs(args, &in); err != nil {
						return nil, err
					}
					return c.Fetch(in.ID)
				},
			},
		},
	}
}
