package aiquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saulo-duarte/quizmaker/internal/config"
	"google.golang.org/genai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ErrProviderUnavailable = errors.New("quiz generator is not configured")

// Provider sends a prompt to a language model and returns the raw JSON text
// of its answer.
type Provider interface {
	SendPrompt(ctx context.Context, system, user string) (string, error)
}

// NewProvider picks the provider named by the configuration. A missing API key
// yields a provider that fails every call, so the rest of the API still serves.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	log := config.WithContext(ctx).WithField("provider", cfg.GeneratorName)

	switch strings.ToLower(cfg.GeneratorName) {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set, quiz generation disabled")
			return unavailableProvider{}, nil
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, quiz generation disabled")
			return unavailableProvider{}, nil
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.GeneratorName)
	}
}

type geminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiProvider{client: client, model: model}, nil
}

func (p *geminiProvider) SendPrompt(ctx context.Context, system, user string) (string, error) {
	log := config.WithContext(ctx)

	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(system+"\n\n"+user),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   geminiQuizSchema(),
		},
	)
	if err != nil {
		log.WithError(err).Error("Gemini content generation failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	raw := result.Text()
	log.Debugf("Raw Gemini response:\n%s", raw)
	if raw == "" {
		return "", errors.New("empty response from model")
	}
	return raw, nil
}

func geminiQuizSchema() *genai.Schema {
	answer := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"answer":  {Type: genai.TypeString, Description: "The text of the answer option."},
			"correct": {Type: genai.TypeBoolean, Description: "Whether this answer is the correct one."},
		},
		Required: []string{"answer", "correct"},
	}
	question := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":    {Type: genai.TypeString, Description: "The text of the question."},
			"explanation": {Type: genai.TypeString, Description: "A brief explanation for why the correct answer is right."},
			"answers": {
				Type:        genai.TypeArray,
				Description: "An array of possible answers. Exactly one answer must be correct.",
				Items:       answer,
			},
		},
		Required: []string{"question", "explanation", "answers"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString, Description: "The title of the quiz."},
			"description": {Type: genai.TypeString, Description: "A brief description of the quiz topic."},
			"questions": {
				Type:        genai.TypeArray,
				Description: "An array of quiz questions.",
				Items:       question,
			},
		},
		Required: []string{"title", "description", "questions"},
	}
}

type unavailableProvider struct{}

func (unavailableProvider) SendPrompt(context.Context, string, string) (string, error) {
	return "", ErrProviderUnavailable
}
