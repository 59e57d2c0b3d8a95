package ops

import (
	"context"
	"strings"

	"nansc/internal/dispatch"
	"nansc/internal/tools"
)

// BridgeTool converts AFTN addresses to AMHS O/R addresses.
func BridgeTool() *tools.Tool {
	return &tools.Tool{
		Name:        "bridge_aftn_to_amhs",
		Description: "Convert an 8-letter AFTN address (e.g. HECAYFYX) to its AMHS X.400 O/R address",
		Category:    tools.CategoryAddressing,
		Priority:    80,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			addr, err := tools.StringArg(args, "aftn_address")
			if err != nil {
				return "", err
			}
			res := dispatch.Convert(strings.ToUpper(addr))
			if res.Failed() {
				return "", res.Err
			}
			return res.Summary(), nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"aftn_address"},
			Properties: map[string]tools.Property{
				"aftn_address": {
					Type:        "string",
					Description: "Eight-letter AFTN address: location indicator, organisation and department",
				},
			},
		},
	}
}
