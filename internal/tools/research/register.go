package research

import (
	"nansc/internal/search"
	"nansc/internal/tools"
)

// RegisterAll registers the research tools whose backends are available.
// A nil searcher or querier leaves its tool out.
func RegisterAll(registry *tools.Registry, s search.Searcher, q Querier) error {
	var allTools []*tools.Tool
	if s != nil {
		allTools = append(allTools, WebSearchTool(s))
	}
	if q != nil {
		allTools = append(allTools, QueryKnowledgeTool(q))
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
