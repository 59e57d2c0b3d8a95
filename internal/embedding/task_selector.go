package embedding

import (
	"strings"
)

// =============================================================================
// TASK TYPE SELECTION
// =============================================================================

// ContentType represents the type of content being embedded.
type ContentType string

const (
	ContentTypeDocument  ContentType = "document"  // Ingested manual or procedure chunk
	ContentTypeQuery     ContentType = "query"     // Operator keyword query
	ContentTypeQuestion  ContentType = "question"  // Natural-language question
	ContentTypeProcedure ContentType = "procedure" // Numbered operational steps
)

// SelectTaskType maps a content type to the GenAI task type that suits it.
// Documents are indexed as RETRIEVAL_DOCUMENT so that queries embedded with a
// retrieval task land in the same space.
func SelectTaskType(contentType ContentType, isQuery bool) string {
	switch contentType {
	case ContentTypeQuestion:
		if isQuery {
			return "QUESTION_ANSWERING"
		}
		return "RETRIEVAL_DOCUMENT"

	case ContentTypeQuery:
		return "RETRIEVAL_QUERY"

	case ContentTypeDocument, ContentTypeProcedure:
		if isQuery {
			return "RETRIEVAL_QUERY"
		}
		return "RETRIEVAL_DOCUMENT"

	default:
		return "SEMANTIC_SIMILARITY"
	}
}

// DetectContentType classifies text by its surface form.
func DetectContentType(text string) ContentType {
	t := strings.ToLower(strings.TrimSpace(text))

	if strings.HasSuffix(t, "?") {
		return ContentTypeQuestion
	}
	for _, prefix := range []string{"what ", "how ", "why ", "when ", "where ", "which ", "who "} {
		if strings.HasPrefix(t, prefix) {
			return ContentTypeQuestion
		}
	}

	steps := 0
	for _, line := range strings.Split(t, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			steps++
		}
	}
	if steps >= 2 {
		return ContentTypeProcedure
	}

	if len(t) < 80 && !strings.Contains(t, "\n") {
		return ContentTypeQuery
	}
	return ContentTypeDocument
}

// GetOptimalTaskType combines detection and selection for convenience.
func GetOptimalTaskType(text string, isQuery bool) string {
	return SelectTaskType(DetectContentType(text), isQuery)
}
