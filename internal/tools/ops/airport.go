package ops

import (
	"context"
	"fmt"
	"strings"

	"nansc/internal/dispatch"
	"nansc/internal/logging"
	"nansc/internal/search"
	"nansc/internal/tools"
)

// LookupAirportTool resolves ICAO codes against the local table. When
// searcher is non-nil an unknown code is looked up on the web.
func LookupAirportTool(coord *dispatch.Coordinator, searcher search.Searcher, maxChars int) *tools.Tool {
	return &tools.Tool{
		Name:        "lookup_airport",
		Description: "Look up an airport by its 4-letter ICAO location indicator (e.g. HECA)",
		Category:    tools.CategoryAirport,
		Priority:    80,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			code, err := tools.StringArg(args, "icao_code")
			if err != nil {
				return "", err
			}
			code = strings.ToUpper(code)

			res := coord.Lookup(code)
			logging.ToolsDebug("lookup_airport %s -> %s", code, res.Outcome)
			switch res.Outcome {
			case dispatch.OutcomeError:
				return "", res.Err
			case dispatch.OutcomeMiss:
				if searcher == nil {
					return fmt.Sprintf("ICAO code '%s' not found in local database.", code), nil
				}
				return search.AirportFallback(ctx, searcher, code, maxChars).Message, nil
			}
			return res.Summary(), nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"icao_code"},
			Properties: map[string]tools.Property{
				"icao_code": {
					Type:        "string",
					Description: "Four-letter ICAO location indicator",
				},
			},
		},
	}
}
