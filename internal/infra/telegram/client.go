package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultPollTimeout = 30 // seconds, server side long polling
	defaultSendRate    = 25 // outgoing requests per second
	defaultSendBurst   = 5
)

// UpdateHandler is the callback for received updates
type UpdateHandler func(update *Update)

// leveledSlog adapts slog to the retryablehttp logger, reporting
// intermediate request failures as warnings
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...any) { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Warn(msg string, keysAndValues ...any)  { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Info(msg string, keysAndValues ...any)  { l.inner.Debug(msg, keysAndValues...) }
func (l leveledSlog) Debug(msg string, keysAndValues ...any) { l.inner.Debug(msg, keysAndValues...) }

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another Bot API server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxRetries sets the maximum number of retries per request
func WithMaxRetries(maxRetries int) Option {
	return func(c *Client) {
		c.http.RetryMax = maxRetries
	}
}

// WithRetryWait sets the wait bounds between retries
func WithRetryWait(waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithSendRate limits outgoing (non polling) requests
func WithSendRate(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.sendLimiter = rate.NewLimiter(limit, burst)
	}
}

// WithPollTimeout sets the long polling timeout in seconds
func WithPollTimeout(seconds int) Option {
	return func(c *Client) {
		c.pollTimeout = seconds
	}
}

// WithRetryPolicy replaces the retry policy
func WithRetryPolicy(policy retryablehttp.CheckRetry) Option {
	return func(c *Client) {
		c.http.CheckRetry = policy
	}
}

// Client is the Telegram Bot API client
type Client struct {
	token       string
	baseURL     string
	http        *retryablehttp.Client
	sendLimiter *rate.Limiter
	pollTimeout int
	logger      *slog.Logger

	onUpdate UpdateHandler
	offset   int64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewClient creates a new Bot API client
func NewClient(token string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 500 * time.Millisecond
	httpClient.RetryWaitMax = 5 * time.Second
	httpClient.CheckRetry = RetryPolicy
	// Long polling holds the connection open for pollTimeout seconds
	httpClient.HTTPClient.Timeout = 2 * defaultPollTimeout * time.Second

	c := &Client{
		token:       token,
		baseURL:     defaultBaseURL,
		http:        httpClient,
		sendLimiter: rate.NewLimiter(defaultSendRate, defaultSendBurst),
		pollTimeout: defaultPollTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "telegram")
	c.http.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: c.logger})
	if c.http.HTTPClient.Timeout <= time.Duration(c.pollTimeout)*time.Second {
		c.http.HTTPClient.Timeout = time.Duration(2*c.pollTimeout+1) * time.Second
	}
	return c
}

// OnUpdate sets the update handler
func (c *Client) OnUpdate(handler UpdateHandler) {
	c.onUpdate = handler
}

// Start long-polls for updates until Stop is called (blocking).
// Each update is handed to the handler on its own goroutine.
func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	me, err := c.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	c.logger.Info("polling started", "bot", me.Username)

	for {
		updates, err := c.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         c.offset,
			Timeout:        c.pollTimeout,
			AllowedUpdates: []string{"message", "callback_query"},
		})
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("polling stopped")
				return nil
			}
			c.logger.Warn("get updates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		for i := range updates {
			u := updates[i]
			if u.UpdateID >= c.offset {
				c.offset = u.UpdateID + 1
			}
			if c.onUpdate != nil {
				go c.onUpdate(&u)
			}
		}
	}
}

// Stop stops polling
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// GetMe returns the bot's own user
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return call[*User](ctx, c, "getMe", struct{}{})
}

// GetUpdates fetches pending updates
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	return call[[]Update](ctx, c, "getUpdates", req)
}

// SendMessage sends a text message
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if err := c.sendLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return call[*Message](noReplay(ctx), c, "sendMessage", req)
}

// SendPhoto sends a photo by file id
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (*Message, error) {
	if err := c.sendLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return call[*Message](noReplay(ctx), c, "sendPhoto", req)
}

// EditMessageText replaces the text of a message
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	if err := c.sendLimiter.Wait(ctx); err != nil {
		return err
	}
	_, err := call[json.RawMessage](ctx, c, "editMessageText", req)
	return err
}

// EditMessageCaption replaces the caption of a message
func (c *Client) EditMessageCaption(ctx context.Context, req EditMessageCaptionRequest) error {
	if err := c.sendLimiter.Wait(ctx); err != nil {
		return err
	}
	_, err := call[json.RawMessage](ctx, c, "editMessageCaption", req)
	return err
}

// AnswerCallbackQuery closes the loading indicator of a button tap
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	_, err := call[bool](ctx, c, "answerCallbackQuery", req)
	return err
}

// call posts a JSON payload to a Bot API method and decodes the result
func call[T any](ctx context.Context, c *Client, method string, payload any) (T, error) {
	var zero T

	body, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the token, never surface it
		return zero, fmt.Errorf("telegram %s: %w", method, redact(err, c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read %s response: %w", method, err)
	}

	var parsed apiResponse[T]
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return zero, fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !parsed.OK {
		apiErr := &APIError{Method: method, Code: parsed.ErrorCode, Description: parsed.Description}
		if parsed.Parameters != nil {
			apiErr.RetryAfter = parsed.Parameters.RetryAfter
		}
		return zero, apiErr
	}
	return parsed.Result, nil
}

type noReplayKey struct{}

// noReplay marks requests that post something new; replaying one that
// reached Telegram would post it twice
func noReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, noReplayKey{}, true)
}

// RetryPolicy wraps retryablehttp.DefaultRetryPolicy. Requests marked
// by noReplay are only retried when they provably never landed: the
// connection could not be opened, or Telegram answered 429.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if replay, _ := ctx.Value(noReplayKey{}).(bool); !replay {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial", nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// IsNotModified reports the harmless error for an edit that changes nothing
func IsNotModified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Description, "message is not modified")
}

type redactedError struct {
	msg string
}

func (e *redactedError) Error() string { return e.msg }

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>")}
}
