package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/hafizhrmd/cropscan/internal/domain/analysis"
	"github.com/hafizhrmd/cropscan/internal/infra/ai/prompt"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
	maxTokens          = 2048
)

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
}

// NewClient builds a classifier client. baseURL is optional and covers any
// OpenAI-compatible endpoint (e.g. an Ollama server's /v1).
func NewClient(apiKey, baseURL, model string, temperature float32) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, Temperature: temperature}
}

// Classify sends the image to the model and decodes the JSON verdict.
// The returned classification is always usable: any failure is logged,
// reported through the error, and replaced by the sentinel. Single attempt,
// no retry.
func (c *Client) Classify(ctx context.Context, image []byte, contentType string) (domain.Classification, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	temperature := c.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt()},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("classify: chat completion error: %v", err)
		return domain.ErrorClassification(), fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		log.Printf("classify: model %s returned no choices", model)
		return domain.ErrorClassification(), fmt.Errorf("model %s returned no choices", model)
	}

	cls, err := ParseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		log.Printf("classify: decode error: %v", err)
		return domain.ErrorClassification(), fmt.Errorf("decode classification: %w", err)
	}
	return cls, nil
}

// ParseClassification strips the code fences generic models sometimes wrap
// around the payload, decodes it and applies safe defaults for missing fields.
func ParseClassification(content string) (domain.Classification, error) {
	content = strings.TrimSpace(content)
	if strings.Contains(content, "```") {
		content = strings.ReplaceAll(content, "```json", "")
		content = strings.ReplaceAll(content, "```", "")
	}

	var cls domain.Classification
	if err := json.Unmarshal([]byte(content), &cls); err != nil {
		return domain.Classification{}, err
	}

	if cls.LeafName == "" {
		cls.LeafName = "Unknown Plant"
	}
	if cls.Status == "" {
		cls.Status = "Unknown"
	}
	if cls.DiseaseName == "" {
		cls.DiseaseName = "None"
	}
	cls.Succeeded = true
	return cls, nil
}
