package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

var (
	// ErrNoCredential means no API key was configured. Checked at
	// construction so a misconfigured deployment fails at startup.
	ErrNoCredential = errors.New("judge: no API key configured")
	// ErrInvocation means the remote judging call failed.
	ErrInvocation = errors.New("judge: model invocation failed")
)

const callTimeout = 120 * time.Second

// Client dispatches assembled judging requests to an OpenAI-compatible
// vision model endpoint. Construct once and share across invocations.
type Client struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

func NewClient(apiKey, baseURL, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Judging calls are not idempotent-safe; retries, where wanted,
		// belong to the acquisition layer.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// Judge sends the request as a system + user message pair and returns the
// first candidate's text. An empty verdict with a nil error is valid: the
// model returned nothing, which is distinct from a transport failure.
func (c *Client) Judge(ctx context.Context, req *Request) (string, error) {
	if len(req.Frames) == 0 {
		return "", ErrNoFrames
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.contentParts()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response carried no candidates", ErrInvocation)
	}

	verdict := resp.Choices[0].Message.Content
	c.logger.Info("judge call completed",
		zap.String("model", c.model),
		zap.Int("frames", len(req.Frames)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("verdict_chars", len(verdict)),
	)
	return verdict, nil
}
