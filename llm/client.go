// Package llm talks to Gemini: the main requirement-gathering turn and the
// best-effort session title call.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jchen2215/promptforge/domain"
)

// SystemInstruction frames the model as a requirement engineer for the whole
// conversation.
const SystemInstruction = "You are a Requirement Engineer. Your goal is to gather details to create " +
	"an optimized AI prompt. Ask one question at a time. If you have enough info, " +
	"provide a summary and then the final prompt."

// jsonRules is appended as the final user turn of every main call so the model
// answers in the strict contract shape.
const jsonRules = "Return ONLY strict JSON. No markdown, no extra keys, no commentary.\n" +
	"Required schema:\n" +
	"{\n" +
	"  \"status\": \"collecting\" | \"delivered\",\n" +
	"  \"question_text\": \"string\",\n" +
	"  \"ui_elements\": [\n" +
	"    {\n" +
	"      \"type\": \"radio\" | \"checkbox\" | \"text\",\n" +
	"      \"options\": [\"string\", ...]\n" +
	"    }\n" +
	"  ],\n" +
	"  \"final_prompt\": \"string\"\n" +
	"}\n" +
	"When type is radio, every option must start with '( ) '.\n" +
	"When type is checkbox, every option must start with '[ ] '.\n" +
	"When type is text, options must be []."

const titleInstruction = "Generate a short session title of 3 to 4 plain words for the request below. " +
	"Reply with the title only, no punctuation."

// DefaultGeneratedTitle is returned when the title call yields nothing usable.
const DefaultGeneratedTitle = "New Prompt Session"

// Client is the Gemini client.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini client using the API-key backend.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{client: client, model: model, timeout: timeout}, nil
}

// NextTurn sends the normalized history plus the JSON rules as a final user
// turn and returns the raw model text. Low temperature and a JSON response
// MIME type keep the output close to the contract; repair is the validator's
// job.
func (c *Client) NextTurn(ctx context.Context, history []domain.Turn) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := Contents(history)
	contents = append(contents, genai.NewContentFromText(jsonRules, genai.RoleUser))

	temp := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// GenerateTitle derives a short session title from free text. Call failures
// surface as errors; a usable-but-messy reply is reduced to at most four
// alphanumeric words, and an unusable one falls back to DefaultGeneratedTitle.
func (c *Client) GenerateTitle(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromText(titleInstruction+"\n\n"+text, genai.RoleUser),
	}

	temp := float32(0.0)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate title: %w", err)
	}

	return CleanTitle(res.Text()), nil
}

// CleanTitle reduces raw title output to 3-4 alphanumeric words, falling back
// to DefaultGeneratedTitle when nothing survives.
func CleanTitle(raw string) string {
	words := make([]string, 0, 4)
	for _, w := range strings.Fields(raw) {
		var b strings.Builder
		for _, r := range w {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			continue
		}
		words = append(words, b.String())
		if len(words) == 4 {
			break
		}
	}
	if len(words) == 0 {
		return DefaultGeneratedTitle
	}
	return strings.Join(words, " ")
}
