package render

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	googleoption "google.golang.org/api/option"
)

// AIExtension sends params.prompt to a large-language-model provider and
// binds the completion text. It reads credentials from the provider's
// usual environment variable and does nothing to cache or rate-limit
// calls — like shell, it runs synchronously and blocks the Engine for
// the round trip.
type AIExtension struct{}

func (AIExtension) Name() string { return "ai" }

func (AIExtension) Calculate(ctx context.Context, params map[string]any, _ []string) (string, bool, error) {
	prompt, ok := params["prompt"].(string)
	if !ok || prompt == "" {
		return "", false, nil
	}
	provider, _ := params["provider"].(string)
	model, _ := params["model"].(string)
	maxTokens := 1024
	switch mt := params["max_tokens"].(type) {
	case int:
		if mt > 0 {
			maxTokens = mt
		}
	case int64:
		if mt > 0 {
			maxTokens = int(mt)
		}
	case float64:
		if mt > 0 {
			maxTokens = int(mt)
		}
	}

	switch provider {
	case "anthropic":
		return callAnthropic(ctx, model, prompt, maxTokens)
	case "openai":
		return callOpenAI(ctx, model, prompt, maxTokens)
	case "google", "gemini":
		return callGemini(ctx, model, prompt)
	default:
		return "", false, fmt.Errorf("ai extension: unknown provider %q", provider)
	}
}

func callAnthropic(ctx context.Context, model, prompt string, maxTokens int) (string, bool, error) {
	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}
	client := anthropic.NewClient(anthropicoption.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", false, err
	}
	if len(msg.Content) == 0 {
		return "", false, nil
	}
	return msg.Content[0].Text, true, nil
}

func callOpenAI(ctx context.Context, model, prompt string, maxTokens int) (string, bool, error) {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	client := openai.NewClient(openaioption.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", false, err
	}
	if len(resp.Choices) == 0 {
		return "", false, nil
	}
	return resp.Choices[0].Message.Content, true, nil
}

func callGemini(ctx context.Context, model, prompt string) (string, bool, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, googleoption.WithAPIKey(os.Getenv("GOOGLE_API_KEY")))
	if err != nil {
		return "", false, err
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", false, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false, nil
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), true, nil
}
