package research

import (
	"context"
	"fmt"

	"nansc/internal/logging"
	"nansc/internal/search"
	"nansc/internal/tools"
)

// maxSearchResults caps what the model may ask for.
const maxSearchResults = 10

// WebSearchTool returns a tool for searching the web.
func WebSearchTool(s search.Searcher) *tools.Tool {
	return &tools.Tool{
		Name:        "web_search",
		Description: "Search the web for aviation terms, procedures or airport codes not in the local database",
		Category:    tools.CategoryResearch,
		Priority:    60,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := tools.StringArg(args, "query")
			if err != nil {
				return "", err
			}
			if query == "" {
				return "", fmt.Errorf("query is required")
			}
			maxResults, err := tools.IntArg(args, "max_results", 3)
			if err != nil {
				return "", err
			}
			if maxResults <= 0 || maxResults > maxSearchResults {
				maxResults = maxSearchResults
			}

			logging.SearchDebug("web_search tool: query=%q, max_results=%d", query, maxResults)

			results, err := s.Search(ctx, query)
			if err != nil {
				return "", fmt.Errorf("search failed: %w", err)
			}
			if len(results) > maxResults {
				results = results[:maxResults]
			}
			return search.FormatMarkdown(query, results), nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]tools.Property{
				"query": {
					Type:        "string",
					Description: "The search query",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of results to return (default: 3)",
					Default:     3,
				},
			},
		},
	}
}
