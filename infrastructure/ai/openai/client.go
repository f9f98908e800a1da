package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	"triptrek-backend/application/ports"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultModel is the fine-tuned Trekka model
const DefaultModel = "ft:gpt-3.5-turbo-0125:personal:trekka:C1G5p4GH"

// ChatAPI is the subset of the go-openai client used here
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Config configures the completion client
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	// Circuit breaker
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
	BreakerOpenTimeout  time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:             "https://api.openai.com/v1",
		Model:               DefaultModel,
		Timeout:             30 * time.Second,
		MaxRetries:          2,
		BreakerFailureRatio: 0.6,
		BreakerMinRequests:  5,
		BreakerOpenTimeout:  60 * time.Second,
	}
}

// Client implements ports.ChatCompleter against the OpenAI chat API. Calls
// go through a circuit breaker so an outage fails fast instead of holding
// Lambda invocations open.
type Client struct {
	api     ChatAPI
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	tracer  *observability.Tracer
	logger  *zap.Logger
}

// NewClient creates a client for the configured endpoint
func NewClient(cfg Config, tracer *observability.Tracer, logger *zap.Logger) *Client {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewClientWithAPI(goopenai.NewClientWithConfig(clientConfig), cfg, tracer, logger)
}

// NewClientWithAPI creates a client around an existing API implementation
func NewClientWithAPI(api ChatAPI, cfg Config, tracer *observability.Tracer, logger *zap.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if cfg.BreakerFailureRatio == 0 {
		cfg.BreakerFailureRatio = defaults.BreakerFailureRatio
	}
	if cfg.BreakerMinRequests == 0 {
		cfg.BreakerMinRequests = defaults.BreakerMinRequests
	}
	if cfg.BreakerOpenTimeout == 0 {
		cfg.BreakerOpenTimeout = defaults.BreakerOpenTimeout
	}

	c := &Client{api: api, cfg: cfg, tracer: tracer, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

var _ ports.ChatCompleter = (*Client)(nil)

// Complete sends the conversation and returns the first choice's content
func (c *Client) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = goopenai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	request := goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONOutput {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var content string
	call := func(ctx context.Context) error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.createWithRetry(ctx, request)
		})
		if err != nil {
			return err
		}
		content = result.(string)
		return nil
	}

	if err := c.tracer.TraceFunction(ctx, "openai.chat", call); err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", errors.ErrAssistantUnavailable.Derive("assistant is temporarily unavailable").WithCause(err)
		}
		return "", errors.ErrAssistantUnavailable.WithCause(err)
	}
	return content, nil
}

func (c *Client) createWithRetry(ctx context.Context, request goopenai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		content, err := c.create(ctx, request)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt < c.cfg.MaxRetries-1 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.logger.Debug("Chat completion failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

func (c *Client) create(ctx context.Context, request goopenai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
