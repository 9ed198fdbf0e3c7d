package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
)

// Service defines the interface for report generation
type Service interface {
	// Generate produces a Markdown project report from the given memory
	// log, oldest first.
	Generate(ctx context.Context, memories []*model.Memory) (string, error)
}

type client struct {
	llmClient gollem.LLMClient
}

// New creates a new report service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return &client{llmClient: llmClient}, nil
}

func (c *client) Generate(ctx context.Context, memories []*model.Memory) (string, error) {
	if len(memories) == 0 {
		return "", goerr.New("no memories to report on")
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(memories)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate report from LLM")
	}
	if len(resp.Texts) == 0 || strings.TrimSpace(resp.Texts[0]) == "" {
		return "", goerr.New("empty report from LLM")
	}

	return resp.Texts[0], nil
}

// buildSystemPrompt creates the fixed system prompt for report generation
func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are a document specialist. Your task is to turn a project memory log into a professional, structured project report in Markdown.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Detect the dominant language of the memory log and write the ENTIRE report, including headers, in that language.\n")
	sb.WriteString("2. Start with a brief executive summary of the project status and key facts.\n")
	sb.WriteString("3. Structure sections from the categories actually present in the log. Omit empty sections; never invent data.\n")
	sb.WriteString("4. When facts conflict, prefer the latest timestamp. Mention the update history when it matters.\n")
	sb.WriteString("5. Use bullet points and bold text for key figures and decisions. Keep the tone objective and concise.\n")

	return sb.String()
}

// buildUserPrompt renders the chronological memory log
func buildUserPrompt(memories []*model.Memory) string {
	var sb strings.Builder

	sb.WriteString("Generate a project report from the following memory log:\n\n")
	for _, m := range memories {
		fmt.Fprintf(&sb, "[%s] [%s]: %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			strings.ToUpper(m.Category.String()),
			m.Text)
	}

	return sb.String()
}
