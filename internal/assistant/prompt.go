package assistant

import (
	"fmt"
	"strings"

	"nansc/internal/dispatch"
	"nansc/internal/search"
	"nansc/internal/session"
)

// SystemPrompt frames every collaborator call.
const SystemPrompt = `You are the NANSC Intelligent Operations Console Assistant.

OPERATIONAL PROTOCOL:
1. DEFINITIONS: If the user asks "What is...", answer from your internal knowledge.
   If unsure, use the 'web_search' tool.
2. CODES: If an ICAO code (4 letters) or AFTN address (8 letters) is detected,
   ALWAYS use 'lookup_airport' or 'bridge_aftn_to_amhs' tools automatically.
3. PROCEDURES: If asked about rules/regs, refer to the RAG Context provided.

BEHAVIORAL GUIDELINES:
- Be professional, concise, and helpful
- Always provide accurate information
- Use tools proactively when appropriate
- Maintain context throughout the conversation

DOMAIN EXPERTISE:
- Civil Aviation Telecommunications
- ICAO Standards and Procedures
- AFTN and AMHS Operations
- Air Traffic Management
- Aviation Safety and Security`

// EmptyMessageReply answers a blank message.
const EmptyMessageReply = "Please provide a message to process."

// DegradedReply explains why no model answered.
const DegradedReply = "System Warning: AI model not available. This could be due to:\n" +
	"1. API key configuration issues\n" +
	"2. Quota limits exceeded\n" +
	"3. Service connectivity problems\n\n" +
	"However, you can still use:\n" +
	"- Airport lookups (ICAO codes)\n" +
	"- AFTN address conversions\n" +
	"- Batch processing tools\n" +
	"- System telemetry monitoring\n\n" +
	"Please check your API configuration or try again later."

// withKnowledge prefixes manual excerpts to the question.
func withKnowledge(excerpts, message string) string {
	return fmt.Sprintf("Reference Info from Manuals:\n%s\n\nUser Question: %s", excerpts, message)
}

// fallbackSummary swaps Miss outcomes for their web fallback text.
func fallbackSummary(fallbacks []search.Fallback) dispatch.SummaryFunc {
	if len(fallbacks) == 0 {
		return nil
	}
	text := make(map[string]string, len(fallbacks))
	for _, fb := range fallbacks {
		text[fb.Code] = fb.Message
	}
	return func(r dispatch.Result) (string, bool) {
		if r.Outcome != dispatch.OutcomeMiss {
			return "", false
		}
		msg, ok := text[r.Token]
		return msg, ok
	}
}

// withHistory puts earlier turns ahead of the prompt.
func withHistory(history []session.Message, prompt string) string {
	if len(history) == 0 {
		return prompt
	}
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, m := range history {
		role := "Operator"
		if m.Role == session.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, m.Content)
	}
	sb.WriteString("\n")
	sb.WriteString(prompt)
	return sb.String()
}
