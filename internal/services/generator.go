package services

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/platform/openai"
)

// GenerationRequest is what the text generator sees for one section.
type GenerationRequest struct {
	LectureTitle string
	SectionOrder int
	SectionText  string
	Reactions    []*types.Reaction
}

// SuggestionGenerator turns a section's current text into replacement text.
// Implementations may fail per call; callers report failures per section.
type SuggestionGenerator interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

const (
	templatePrefix = "[AI SUGGESTED UPDATE] "
	templateSuffix = " (Clarify this section based on student feedback.)"
)

type templateGenerator struct{}

// NewTemplateGenerator returns the offline generator used when no model is
// configured. It wraps the section text in a fixed marker.
func NewTemplateGenerator() SuggestionGenerator { return templateGenerator{} }

func (templateGenerator) Name() string { return "template" }

func (templateGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return templatePrefix + req.SectionText + templateSuffix, nil
}

const generationSystemPrompt = `You revise university lecture notes.
You receive one section of a lecture and the feedback students left on it.
Rewrite the section so it fixes typos and calculation errors and clarifies what confused students.
Keep the meaning, scope and approximate length. Return only the revised section text.`

type openAIGenerator struct {
	client openai.Client
}

func NewOpenAIGenerator(client openai.Client) SuggestionGenerator {
	return &openAIGenerator{client: client}
}

func (g *openAIGenerator) Name() string { return "openai:" + g.client.Model() }

func (g *openAIGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	return g.client.GenerateText(ctx, generationSystemPrompt, buildGenerationPrompt(req))
}

func buildGenerationPrompt(req GenerationRequest) string {
	var b strings.Builder
	if t := strings.TrimSpace(req.LectureTitle); t != "" {
		fmt.Fprintf(&b, "Lecture: %s\n", t)
	}
	fmt.Fprintf(&b, "Section %d:\n%s\n", req.SectionOrder, req.SectionText)
	if len(req.Reactions) == 0 {
		b.WriteString("\nNo student feedback was recorded; tighten the wording only.\n")
		return b.String()
	}
	b.WriteString("\nStudent feedback:\n")
	for _, r := range req.Reactions {
		if r == nil {
			continue
		}
		if c := strings.TrimSpace(r.Comment); c != "" {
			fmt.Fprintf(&b, "- %s: %s\n", r.Type, c)
		} else {
			fmt.Fprintf(&b, "- %s\n", r.Type)
		}
	}
	return b.String()
}
