package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/logger"
)

// Config configures the Anthropic generator.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature float64

	// Timeout bounds each request, retries included.
	Timeout    time.Duration
	MaxRetries int

	// RPS throttles requests. Zero disables throttling.
	RPS float64

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// DefaultConfig returns the answer-generation defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   500,
		Temperature: 0.1,
		Timeout:     60 * time.Second,
		MaxRetries:  2,
	}
}

// Anthropic generates answers with the Claude Messages API.
type Anthropic struct {
	client  *anthropic.Client
	cfg     Config
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures the Anthropic generator.
type Option func(*Anthropic)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Anthropic) {
		a.log = l.Named("llm")
	}
}

// NewAnthropic creates a generator. Zero-valued fields in cfg take their
// DefaultConfig values.
func NewAnthropic(cfg Config, opts ...Option) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	a := &Anthropic{
		client: &client,
		cfg:    cfg,
		log:    zap.NewNop(),
	}
	if cfg.RPS > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate sends prompt as a single user message and returns the text
// of the reply.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: anthropic.Float(a.cfg.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			a.log.Warn("claude API error", zap.Int("status", apiErr.StatusCode), zap.Error(err))
		}
		return "", fmt.Errorf("claude API error: %w", err)
	}

	if string(resp.StopReason) == "refusal" {
		return "", ErrRefused
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	answer := strings.TrimSpace(text.String())
	if answer == "" {
		return "", ErrEmptyResponse
	}

	a.log.Debug("claude responded",
		zap.String("model", a.cfg.Model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("answer", logger.Truncate(answer, 120)))
	return answer, nil
}
