package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// TriageService analyzes free-text rescue reports and suggests intake
// details. Optional; enabled only when an OpenAI API key is configured.
type TriageService struct {
	client *openai.Client
}

// TriageSuggestion is the structured suggestion extracted from a report.
type TriageSuggestion struct {
	Species   string `json:"species"`
	Name      string `json:"name"`
	CareNotes string `json:"care_notes"`
}

func NewTriageService(apiKey string) *TriageService {
	return &TriageService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestIntake extracts a species guess and initial care notes from a
// free-text rescue report.
func (s *TriageService) SuggestIntake(ctx context.Context, report string) (*TriageSuggestion, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are an intake assistant for a wildlife rehabilitation centre.
Read the rescue report below and respond with a JSON object containing:
- "species": the most likely species (common name, e.g. "Ringtail Possum")
- "name": a short working name for the animal
- "care_notes": two or three sentences of initial care guidance

Report:
%s

Respond with the JSON object only.`, report)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var suggestion TriageSuggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion: %w", err)
	}
	if suggestion.Species == "" {
		return nil, fmt.Errorf("no species identified in report")
	}
	return &suggestion, nil
}
