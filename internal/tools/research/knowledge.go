package research

import (
	"context"

	"nansc/internal/tools"
)

// Querier answers questions from the knowledge base.
type Querier interface {
	Query(ctx context.Context, question string) (string, error)
}

// noExcerpts is returned when the knowledge base has nothing relevant.
const noExcerpts = "No matching excerpts in the ingested manuals."

// QueryKnowledgeTool retrieves manual excerpts for a question.
func QueryKnowledgeTool(q Querier) *tools.Tool {
	return &tools.Tool{
		Name:        "query_knowledge",
		Description: "Retrieve excerpts from ingested operations manuals about procedures, rules and regulations",
		Category:    tools.CategoryKnowledge,
		Priority:    70,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			question, err := tools.StringArg(args, "question")
			if err != nil {
				return "", err
			}
			text, err := q.Query(ctx, question)
			if err != nil {
				return "", err
			}
			if text == "" {
				return noExcerpts, nil
			}
			return text, nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"question"},
			Properties: map[string]tools.Property{
				"question": {
					Type:        "string",
					Description: "The procedure or regulation question",
				},
			},
		},
	}
}
