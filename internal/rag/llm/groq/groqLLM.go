package groq

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/rag/llm"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

type llmClient struct {
	client      openai.Client
	chatModel   string
	visionModel string
	logger      *logger_i.Logger
}

// NewClient talks to Groq through its OpenAI-compatible endpoint.
func NewClient(apikey string) llm.Provider {
	logger := logger_i.NewLogger("llm_groq")
	if apikey == "" {
		logger.Error("GROQ_API_KEY not set, chat unavailable")
		return nil
	}

	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithBaseURL(config.GroqBaseURL),
	)
	logger.Info("Groq client created", "chatModel", config.ChatModelName, "visionModel", config.VisionModelName)
	return &llmClient{
		client:      c,
		chatModel:   config.ChatModelName,
		visionModel: config.VisionModelName,
		logger:      logger,
	}
}

func (c *llmClient) Chat(ctx context.Context, history []chatModel.ConversationEntry) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, entry := range history {
		switch entry.Role {
		case chatModel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(entry.Content))
		default:
			messages = append(messages, openai.UserMessage(entry.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.chatModel,
		Messages:            messages,
		Temperature:         openai.Float(config.ChatTemperature),
		MaxCompletionTokens: openai.Int(config.MaxChatTokens),
	})
	if err != nil {
		c.logger.Error("chat completion failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *llmClient) AnalyzeImage(ctx context.Context, imageDataURL string, userMessage string) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze this image in detail. Describe what you see, including objects, people, text, "+
			"colors, composition, and any other relevant details. If the user has a specific question "+
			"about the image, focus on that as well. User's message: %s", userMessage)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageDataURL,
				}),
			}),
		},
		Temperature:         openai.Float(config.VisionTemp),
		MaxCompletionTokens: openai.Int(config.MaxChatTokens),
	})
	if err != nil {
		c.logger.Error("vision completion failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
