// Package briefing turns a risk assessment into a short natural-language
// pilot briefing using OpenAI's API.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/convective"
	"github.com/Miauneiro/Convective-Risk-Analyzer/internal/risk"
)

const systemPrompt = "You are an aviation weather briefer. Summarize convective " +
	"conditions for recreational pilots in plain language. Be direct about " +
	"go/no-go calls and keep the briefing under 150 words."

// Generator produces text briefings via the OpenAI chat API.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator creates a briefing generator.
// It reads the OPENAI_API_KEY environment variable for authentication.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Briefing generates a pilot briefing for one analyzed sounding.
func (g *Generator) Briefing(ctx context.Context, stationID string, observedAt time.Time, indices *convective.Indices, assessment risk.Assessment) (string, error) {
	prompt := buildPrompt(stationID, observedAt, indices, assessment)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model: g.model,
	})
	if err != nil {
		return "", fmt.Errorf("briefing generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion returned")
	}

	log.Printf("briefing: generated for %s (%d chars)", stationID, len(text))
	return text, nil
}

// buildPrompt lays out the analysis for the model. Stakeholder lines keep the
// classifier's go/no-go calls so the narrative cannot contradict them.
func buildPrompt(stationID string, observedAt time.Time, indices *convective.Indices, assessment risk.Assessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sounding from station %s at %s.\n\n", stationID, observedAt.UTC().Format("2006-01-02 15Z"))
	fmt.Fprintf(&b, "CAPE: %.0f J/kg\n", indices.CAPE)
	fmt.Fprintf(&b, "CIN: %.0f J/kg\n", indices.CIN)
	fmt.Fprintf(&b, "LCL: %.0f hPa\n", indices.LCLPressure)
	if indices.LFCPressure != nil {
		fmt.Fprintf(&b, "LFC: %.0f hPa\n", *indices.LFCPressure)
	} else {
		b.WriteString("LFC: none (parcel never becomes buoyant)\n")
	}
	if indices.ELPressure != nil {
		fmt.Fprintf(&b, "EL: %.0f hPa\n", *indices.ELPressure)
	}
	fmt.Fprintf(&b, "\nOverall risk: %s, thunderstorm potential %s.\n\n", assessment.GeneralRisk, assessment.Potential)

	stakeholders := []struct {
		name string
		sr   risk.StakeholderRisk
	}{
		{"Paragliding", assessment.Paragliding},
		{"Hang gliding", assessment.HangGliding},
		{"Hot air balloon", assessment.HotAirBalloon},
		{"Gliding", assessment.Gliding},
		{"General aviation", assessment.GeneralAviation},
	}
	for _, s := range stakeholders {
		call := "NO-GO"
		if s.sr.Go {
			call = "GO"
		}
		fmt.Fprintf(&b, "%s: %s (%s). %s\n", s.name, s.sr.Level, call, s.sr.Reasoning)
	}

	b.WriteString("\nWrite the briefing.")
	return b.String()
}
