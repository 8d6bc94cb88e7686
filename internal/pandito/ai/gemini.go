// Package ai provides the text-generation collaborator backed by Gemini.
//
// The generator only produces reply text; it never makes routing decisions.
// All classification stays in the deterministic engine, and a generation
// failure is an ordinary error the composer turns into a fixed apology.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned when no API key was provided. The bot keeps
// running; open questions get a fixed "not available" reply.
var ErrNotConfigured = errors.New("ai: API key not configured")

// ErrEmptyResponse is returned when the model replies with no usable text.
var ErrEmptyResponse = errors.New("ai: model returned no text")

// Generator produces free text for open questions and place descriptions.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Answer replies to an explicit user question.
	Answer(ctx context.Context, question string) (string, error)
	// Describe improvises a tourist description for a topic the knowledge
	// base does not cover.
	Describe(ctx context.Context, topic string) (string, error)
}

// Config configures the Gemini generator.
type Config struct {
	// APIKey authenticates against the Gemini API. Empty disables the
	// generator.
	APIKey string

	// Model overrides the generation model. Defaults to gemini-2.5-flash.
	Model string
}

// Gemini implements Generator using the official genai client.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns a Generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Answer implements Generator.
func (g *Gemini) Answer(ctx context.Context, question string) (string, error) {
	return g.generate(ctx, answerPrompt(question))
}

// Describe implements Generator.
func (g *Gemini) Describe(ctx context.Context, topic string) (string, error) {
	return g.generate(ctx, describePrompt(topic))
}

// generate runs one prompt through the model and extracts the reply text.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
