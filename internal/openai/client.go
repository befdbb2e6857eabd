package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultEmbeddingDimensions matches text-embedding-3-small.
	DefaultEmbeddingDimensions = 1536
	DefaultChatModel           = openai.GPT4oMini
)

var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	ErrEmptyCompletion = errors.New("completion returned no content")
)

// Role of a conversation turn passed to Complete.
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// ChatTurn is one prior message of a conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        EmbeddingAPI
	chat       ChatAPI
	dimensions int
}

type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &OpenAIAdapter{
		client:         openai.NewClientWithConfig(clientCfg),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		chatModel:      chatModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion returns the content of the first choice.
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.chatModel,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	ChatModel           string
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapter(cfg)
	return &Client{
		api:        adapter,
		chat:       adapter,
		dimensions: dimensions,
	}
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), expected)
	}

	return embedding, nil
}

// Complete sends the system prompt followed by turns to the chat model. The
// new user message is expected as the last turn. Turns with a role other than
// assistant are sent as user turns; blank turns are dropped.
func (c *Client) Complete(ctx context.Context, system string, turns []ChatTurn, temperature float32) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		role := t.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	content, err := c.chat.CreateChatCompletion(ctx, messages, temperature)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
