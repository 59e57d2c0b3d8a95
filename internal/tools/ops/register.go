package ops

import (
	"nansc/internal/dispatch"
	"nansc/internal/search"
	"nansc/internal/tools"
)

// RegisterAll registers the local operations. searcher may be nil when the
// web fallback is disabled.
func RegisterAll(registry *tools.Registry, coord *dispatch.Coordinator, searcher search.Searcher, maxChars int) error {
	allTools := []*tools.Tool{
		LookupAirportTool(coord, searcher, maxChars),
		BridgeTool(),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
