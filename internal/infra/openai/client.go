package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-4o-mini"
	requestTimeout = 15 * time.Second
)

// SpamPrompt is the system prompt for classifying confession submissions
const SpamPrompt = `You are a filter for an anonymous confession channel.

Decide whether the submitted text is spam: advertising, promotion of a service or product, recruiting, scams, or solicitation to contact someone.

Personal confessions, feelings, stories and opinions are NOT spam, even if they are rude, sad or strange.

Reply only "YES" (spam) or "NO" (not spam), no explanations.`

// Config contains classifier client configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Empty uses the OpenAI default; any OpenAI-compatible endpoint works
}

// Client is the chat completion client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a new classifier client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: logger.With("component", "classifier"),
	}
}

// Chat sends a message and returns the response
func (c *Client) Chat(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: 0,
		MaxTokens:   5, // YES or NO
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// IsSpam classifies a submission body
func (c *Client) IsSpam(ctx context.Context, text string) (bool, error) {
	resp, err := c.Chat(ctx, SpamPrompt, text)
	if err != nil {
		return false, err
	}

	verdict := ParseVerdict(resp)
	c.logger.Debug("classified submission", "response", resp, "spam", verdict)
	return verdict, nil
}

// ParseVerdict interprets a YES/NO completion. Anything but YES is not spam.
func ParseVerdict(resp string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(resp)), "YES")
}
