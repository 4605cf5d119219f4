package synth

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/infra/tokenizer"
)

const basePrompt = `You translate questions about a user's invoices into a single PostgreSQL SELECT statement.

%s

Rules:
- %s
- Use named parameters exactly as written, never inline the user id.
- Return only one statement inside a ` + "```sql" + ` block.
- Never modify data.`

const strictGuidance = `Answer with exact matching. Use ILIKE with wildcards for vendor and description text, compare dates and amounts directly.`

const semanticGuidance = `Answer with vector similarity. Rank items with description_embedding <-> '[:query_embedding]'::vector,
return 1 - (description_embedding <=> '[:query_embedding]'::vector) AS similarity, and limit the result to the closest matches.`

func systemPrompt(req query.SynthesisRequest) string {
	hint := strings.TrimSpace(req.TenantScopeHint)
	if hint == "" {
		hint = "Always filter invoices by the user id parameter."
	}
	prompt := fmt.Sprintf(basePrompt, strings.TrimSpace(req.Schema), hint)
	if req.Mode == query.ModeSemantic {
		return prompt + "\n\n" + semanticGuidance
	}
	return prompt + "\n\n" + strictGuidance
}

// buildMessages renders the request as chat messages, keeping the newest
// history turns that fit within budget tokens.
func buildMessages(req query.SynthesisRequest, budget int, count func(string) int) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
	}

	contents := make([]string, len(req.History))
	for i, turn := range req.History {
		contents[i] = turn.Content
	}
	kept := tokenizer.TrimToBudget(contents, budget, count)
	for _, turn := range req.History[len(req.History)-len(kept):] {
		role := openai.ChatMessageRoleUser
		if strings.EqualFold(turn.Role, openai.ChatMessageRoleAssistant) {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Question,
	})
	return messages
}
