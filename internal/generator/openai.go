// Package generator produces riddle text through an OpenAI-compatible API.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/riddleworks/dailyriddle/internal/config"
	"github.com/riddleworks/dailyriddle/internal/settings"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// ErrGeneration wraps any failure of the external text-generation call.
// Callers distinguish it from quota refusals so the two surface as
// different HTTP statuses.
var ErrGeneration = errors.New("generator: riddle generation failed")

const systemPrompt = "You are a creative riddle generator. Generate an interesting, " +
	"challenging but solvable riddle with its answer. Be creative and original."

// Riddle is one generated question/answer pair.
type Riddle struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generator produces one riddle per call.
type Generator interface {
	Generate(ctx context.Context) (Riddle, error)
}

// OpenAIGenerator calls the chat completions API with a JSON response
// format and validates the result.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator constructs a generator from config.
func NewOpenAIGenerator(cfg config.OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate requests one riddle. The prompt can be tuned at runtime via
// the RIDDLE_PROMPT setting.
func (g *OpenAIGenerator) Generate(ctx context.Context) (Riddle, error) {
	prompt := settings.StringValue(settings.RiddlePromptKey, settings.DefaultRiddlePrompt)

	resp, errCreate := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if errCreate != nil {
		log.WithError(errCreate).Error("generator: chat completion failed")
		return Riddle{}, fmt.Errorf("%w: %v", ErrGeneration, errCreate)
	}
	if len(resp.Choices) == 0 {
		return Riddle{}, fmt.Errorf("%w: empty response", ErrGeneration)
	}

	return parseRiddleJSON(resp.Choices[0].Message.Content)
}

// parseRiddleJSON decodes and validates the model output.
func parseRiddleJSON(content string) (Riddle, error) {
	var riddle Riddle
	if errDecode := json.Unmarshal([]byte(content), &riddle); errDecode != nil {
		return Riddle{}, fmt.Errorf("%w: invalid response format: %v", ErrGeneration, errDecode)
	}
	riddle.Question = strings.TrimSpace(riddle.Question)
	riddle.Answer = strings.TrimSpace(riddle.Answer)
	if riddle.Question == "" || riddle.Answer == "" {
		return Riddle{}, fmt.Errorf("%w: response missing question or answer", ErrGeneration)
	}
	return riddle, nil
}
