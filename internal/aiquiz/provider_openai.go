package aiquiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulo-duarte/quizmaker/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const submitQuizTool = "submit_quiz"

type openAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) Provider {
	return &openAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// SendPrompt forces a call to the submit_quiz tool and returns its arguments,
// which carry the quiz JSON.
func (p *openAIProvider) SendPrompt(ctx context.Context, system, user string) (string, error) {
	log := config.WithContext(ctx)

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        submitQuizTool,
						Description: "Submit the generated quiz",
						Parameters:  openAIQuizDefinition(),
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: submitQuizTool},
			},
		},
	)
	if err != nil {
		log.WithError(err).Error("OpenAI chat completion failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return "", errors.New("no tool calls in response")
	}
	if calls[0].Function.Name != submitQuizTool {
		return "", fmt.Errorf("unexpected tool call: %s", calls[0].Function.Name)
	}

	log.Debugf("Raw OpenAI tool arguments:\n%s", calls[0].Function.Arguments)
	return calls[0].Function.Arguments, nil
}

func openAIQuizDefinition() jsonschema.Definition {
	answer := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"answer":  {Type: jsonschema.String, Description: "The text of the answer option."},
			"correct": {Type: jsonschema.Boolean, Description: "Whether this answer is the correct one."},
		},
		Required: []string{"answer", "correct"},
	}
	question := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"question":    {Type: jsonschema.String, Description: "The text of the question."},
			"explanation": {Type: jsonschema.String, Description: "A brief explanation for why the correct answer is right."},
			"answers": {
				Type:        jsonschema.Array,
				Description: "An array of possible answers. Exactly one answer must be correct.",
				Items:       &answer,
			},
		},
		Required: []string{"question", "explanation", "answers"},
	}
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":       {Type: jsonschema.String, Description: "The title of the quiz."},
			"description": {Type: jsonschema.String, Description: "A brief description of the quiz topic."},
			"questions": {
				Type:        jsonschema.Array,
				Description: "An array of quiz questions.",
				Items:       &question,
			},
		},
		Required: []string{"title", "description", "questions"},
	}
}
