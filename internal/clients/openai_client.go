package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/nluflow/config"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
)

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

func NewOpenAIClient(cfg config.LocalAnalysisConfig, opts ...option.RequestOption) *OpenAIClient {
	httpClient := &http.Client{
		Timeout: openAIRequestTimeout,
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithHTTPClient(httpClient),
	}, opts...)

	return &OpenAIClient{
		Client: openai.NewClient(opts...),
		model:  cfg.OpenAIModel,
	}
}

// GetOpenAIClient returns the process wide client, or nil when no API key is
// configured.
func GetOpenAIClient() *OpenAIClient {
	openAIOnce.Do(func() {
		cfg := config.Load().Local
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("[OpenAIClient] Missing OPENAI_API_KEY, categories will not be served locally")
			return
		}
		openAIClientInstance = NewOpenAIClient(cfg)
		slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
			slog.Duration("timeout", openAIRequestTimeout),
			slog.String("model", cfg.OpenAIModel))
	})
	return openAIClientInstance
}

// Complete runs one system+user chat turn and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model:       openai.F(openai.ChatModel(c.model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", errors.New("[OpenAIClient] empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}
