package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AnswerGenerator produces the interviewer's reply for one user question.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) GenerateAnswer(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(`
You are a senior interviewer running a mock job interview on an
interview-preparation platform. The candidate just said:

%s

Instructions:
1. Respond as the interviewer: give concise, concrete feedback on the answer,
   then ask exactly one natural follow-up interview question.
2. Stay encouraging but honest. Point out missing structure (situation, action,
   result) when relevant.
3. Plain text only, no markdown, at most 120 words.
`, question)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from LLM")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return answer, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}
