package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/metrics"
	"github.com/hilthontt/oekaki/internal/infrastructure/tracing"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	OpGenerateTopic = "generate_topic"
	OpJudgeGuess    = "judge_guess"
	OpPrompt        = "prompt"

	defaultTimeout = 20 * time.Second
)

// Client implements domain.Judge on top of a Provider.
type Client struct {
	provider Provider
	timeout  time.Duration
	logger   logging.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

var _ domain.Judge = (*Client)(nil)

func NewClient(provider Provider, timeout time.Duration, logger logging.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		metrics:  m,
		tracer:   tracing.GetTracer("oekaki/llm"),
	}
}

func (c *Client) GenerateTopic(ctx context.Context) (domain.TopicCandidate, error) {
	prompt, err := TopicPrompt()
	if err != nil {
		return domain.TopicCandidate{}, err
	}

	arr, err := c.call(ctx, OpGenerateTopic, prompt)
	if err != nil {
		return domain.TopicCandidate{}, err
	}

	return topicFromItem(arr.Get("0")), nil
}

func (c *Client) JudgeGuess(ctx context.Context, topic, guess string) (domain.Judgment, error) {
	prompt, err := JudgePrompt(topic, guess)
	if err != nil {
		return domain.Judgment{}, err
	}

	arr, err := c.call(ctx, OpJudgeGuess, prompt)
	if err != nil {
		return domain.Judgment{}, err
	}

	return judgmentFromItem(arr.Get("0")), nil
}

// Generate runs a free-form prompt and returns the extracted array as raw JSON.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	arr, err := c.call(ctx, OpPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(arr.Raw), nil
}

func (c *Client) call(ctx context.Context, op, prompt string) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "llm."+op, trace.WithAttributes(attribute.String("llm.op", op)))
	defer span.End()

	start := time.Now()
	raw, err := c.provider.Complete(ctx, prompt)
	var arr gjson.Result
	if err == nil {
		arr, err = FirstArray(raw)
	}
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.ObserveJudge(op, elapsed.Seconds(), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(logging.Judge, subCategoryFor(op), "llm call failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
			logging.Latency:      elapsed.String(),
		})
		return gjson.Result{}, err
	}

	c.logger.Debug(logging.Judge, subCategoryFor(op), "llm call completed", map[logging.ExtraKey]any{
		logging.Latency: elapsed.String(),
	})
	return arr, nil
}

func subCategoryFor(op string) logging.SubCategory {
	switch op {
	case OpGenerateTopic:
		return logging.GenerateTopic
	case OpJudgeGuess:
		return logging.JudgeGuess
	default:
		return logging.Prompt
	}
}
