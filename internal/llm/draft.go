package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/prompts"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// longConversation is the turn count above which drafts use the advanced tier
const longConversation = 6

// DraftGenerator asks the model for a quote draft
type DraftGenerator struct {
	client Client
	schema ExtractionSchema
}

// NewDraftGenerator creates a generator backed by client
func NewDraftGenerator(client Client) *DraftGenerator {
	return &DraftGenerator{client: client, schema: QuoteDraftSchema()}
}

// Generate returns the raw JSON draft for req. The result still has to go through draft.Parse.
func (g *DraftGenerator) Generate(ctx context.Context, req *types.QuoteRequest) (string, error) {
	prompt := BuildExtractionPrompt(g.schema, DescribeRequest(req))
	raw, err := g.client.GenerateJSON(ctx, prompt, TierFor(req))
	if err != nil {
		return "", fmt.Errorf("draft generation failed: %w", err)
	}
	return raw, nil
}

// TierFor picks the model tier for a request
func TierFor(req *types.QuoteRequest) ModelTier {
	if len(req.Conversation) > longConversation {
		return TierAdvanced
	}
	return TierStandard
}

// DescribeRequest renders the request as prompt input
func DescribeRequest(req *types.QuoteRequest) string {
	var sb strings.Builder
	sb.WriteString("Description: ")
	sb.WriteString(strings.TrimSpace(req.Description))
	sb.WriteString("\n")

	if req.JobType != "" {
		sb.WriteString(prompts.MustRender(prompts.JobTypeHint, prompts.JobType{JobType: req.JobType}))
		sb.WriteString("\n")
	}
	writeAmount(&sb, "Area (m2)", req.Area)
	writeAmount(&sb, "Quantity", req.Quantity)
	writeAmount(&sb, "Rooms", req.Rooms)
	writeAmount(&sb, "Length (m)", req.Length)
	writeText(&sb, "Complexity", req.Complexity)
	writeText(&sb, "Quality", req.Quality)
	writeText(&sb, "Region", req.Region)
	writeText(&sb, "Season", req.Season)
	writeAmount(&sb, "Hourly rate (SEK)", req.HourlyRate)

	if f := flags.Detect(req.Description, req.Conversation); f.CustomerSuppliesMaterial {
		supplied := "some of the material"
		if len(f.SuppliedCategories) > 0 {
			supplied = strings.Join(f.SuppliedCategories, ", ")
		}
		sb.WriteString(prompts.MustRender(prompts.CustomerSuppliesHint, prompts.Supplies{Materials: supplied}))
		sb.WriteString("\n")
	}

	if len(req.Conversation) > 0 {
		sb.WriteString("\nConversation:\n")
		for _, msg := range req.Conversation {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, strings.TrimSpace(msg.Content))
		}
	}
	return sb.String()
}

func writeAmount(sb *strings.Builder, label string, v float64) {
	if v > 0 {
		fmt.Fprintf(sb, "%s: %g\n", label, v)
	}
}

func writeText(sb *strings.Builder, label, v string) {
	if v != "" {
		fmt.Fprintf(sb, "%s: %s\n", label, v)
	}
}
