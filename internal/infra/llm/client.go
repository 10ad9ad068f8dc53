// Package llm реализует ai.Completer поверх OpenAI-совместимых chat-эндпоинтов
// (OpenAI, Groq, Gemini). Каждый провайдер закрыт своим circuit breaker.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/ai"
	"github.com/EgorLis/resume-builder/internal/metrics"
)

// Базовые URL OpenAI-совместимых API
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

var ErrEmptyChoice = errors.New("llm: response has no choices")

type Config struct {
	Name    string // openai | groq | gemini
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration // верхняя граница на запрос, если Prompt.Timeout не задан
}

// BreakerConfig: параметры размыкателя.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	cfg     Config
	api     chatAPI
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
	metrics *metrics.Collector
}

var _ ai.Completer = (*Client)(nil)

func New(cfg Config, bc BreakerConfig, log *zap.Logger, m *metrics.Collector) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newClient(cfg, openai.NewClientWithConfig(oc), bc, log, m)
}

func newClient(cfg Config, api chatAPI, bc BreakerConfig, log *zap.Logger, m *metrics.Collector) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("provider", cfg.Name), zap.String("model", cfg.Model))
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + cfg.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
		// отмена клиентом: не отказ провайдера
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Client{cfg: cfg, api: api, breaker: cb, log: log, metrics: m}
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Complete(ctx context.Context, p ai.Prompt) (string, error) {
	if p.Timeout <= 0 && c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: p.Temperature,
	}
	if p.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyChoice
		}
		return resp.Choices[0].Message.Content, nil
	})
	d := time.Since(start)
	c.metrics.AICall(c.cfg.Name, d, err)

	if err != nil {
		c.log.Error("completion failed", zap.String("op", p.Operation), zap.Duration("took", d), zap.Error(err))
		return "", fmt.Errorf("%s %s: %w", c.cfg.Name, p.Operation, err)
	}
	text, _ := out.(string)
	c.log.Debug("completion ok", zap.String("op", p.Operation), zap.Duration("took", d), zap.Int("chars", len(text)))
	return strings.TrimSpace(text), nil
}

// State: текущее состояние размыкателя (для /readyz и логов).
func (c *Client) State() string { return c.breaker.State().String() }
