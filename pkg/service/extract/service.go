package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

type client struct {
	llmClient gollem.LLMClient
}

// New creates a new extraction service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return &client{llmClient: llmClient}, nil
}

type llmResponse struct {
	Memories []Candidate `json:"memories"`
}

func (c *client) Extract(ctx context.Context, input Input) ([]Candidate, error) {
	if strings.TrimSpace(input.Conversation) == "" {
		return nil, goerr.New("conversation text is required")
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(input)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	// Drop malformed entries rather than failing the whole batch.
	candidates := make([]Candidate, 0, len(parsed.Memories))
	for _, m := range parsed.Memories {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		m.Category = m.Category.OrDefault()
		candidates = append(candidates, m)
	}

	return candidates, nil
}

// buildSystemPrompt creates the fixed system prompt for fact extraction
func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are a knowledge base manager for a software project. Your task is to extract NEW confirmed project decisions and facts from a conversation.\n\n")
	sb.WriteString("The input is formatted as 'User: [message]' followed by 'AI: [response]'.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Extract facts ONLY from the 'User:' section. The 'AI:' section is read-only context.\n")
	sb.WriteString("2. Discard suggestions, advice, and opinions (text containing 'recommend', 'suggest', 'should' or equivalents). A fact must be definitive.\n")
	sb.WriteString("3. Only extract a technical choice when the user explicitly confirms it. Never extract the AI's proposal until the user approves it.\n")
	sb.WriteString("4. When the user agrees with a short 'Okay', extract only the main topic from the user's own words, not the AI's sub-details.\n")
	sb.WriteString("5. Discard hypothetical or conditional statements ('if', 'maybe', 'might' or equivalents). Discard questions entirely.\n")
	sb.WriteString("6. When the user declares something resolved, fixed, or changed, produce a new factual statement and include 'update' and 'correction' in its tags.\n")
	sb.WriteString("7. When the user cancels or removes a tool or decision, produce a fact stating clearly that it was removed.\n")
	sb.WriteString("8. Rewrite each fact as a clear standalone sentence in the SAME LANGUAGE as the user's input, dropping conversational fillers.\n")
	sb.WriteString("9. Always provide tags naming the specific tools, files, or entities involved.\n")
	sb.WriteString("10. Provide a short category name for each fact (e.g. 'Infrastructure', 'Budget').\n")
	sb.WriteString("11. Do not re-extract facts already present in the known-context block.\n")
	sb.WriteString("12. If nothing qualifies, return an empty list.\n")

	return sb.String()
}

// buildUserPrompt creates the user prompt with prior context and the conversation
func buildUserPrompt(input Input) string {
	var sb strings.Builder

	if input.Context != "" {
		sb.WriteString("## Already known (do not re-extract):\n\n")
		sb.WriteString(input.Context)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Conversation:\n\n")
	sb.WriteString(input.Conversation)
	sb.WriteString("\n")

	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "MemoryExtractionResponse",
		Description: "Facts extracted from the conversation",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"memories": {
				Type:        gollem.TypeArray,
				Description: "List of extracted facts, empty when nothing qualifies",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"text": {
							Type:        gollem.TypeString,
							Description: "The fact, rewritten as a standalone sentence in the user's language",
						},
						"tags": {
							Type:        gollem.TypeArray,
							Description: "Specific tools, files, or entities named by the fact",
							Items:       &gollem.Parameter{Type: gollem.TypeString},
						},
						"category": {
							Type:        gollem.TypeString,
							Description: "A short category name for the fact",
						},
					},
					Required: []string{"text", "tags", "category"},
				},
			},
		},
		Required: []string{"memories"},
	}
}
