package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// ===========================================================================
// AI Completion Client
// Gateway gọi OpenAI chat completion API (openai-go)
// Inject vào AssistService thay vì dùng global client; enabled flag
// được quyết định một lần lúc khởi tạo dựa trên API key
// ===========================================================================

// ErrDisabled trả về khi gọi Complete mà không có API key
var ErrDisabled = errors.New("ai: client disabled, no api key configured")

// DefaultModel model mặc định cho mọi completion
const DefaultModel = openai.ChatModelGPT4oMini

// CompletionOptions tùy chọn cho một lần gọi completion
type CompletionOptions struct {
	// Temperature độ sáng tạo (0 = dùng default của model)
	Temperature float64

	// MaxTokens giới hạn độ dài output (0 = không giới hạn)
	MaxTokens int64
}

// Client interface cho chat completion gateway
type Client interface {
	// Enabled client có sẵn sàng gọi API không (có API key)
	Enabled() bool

	// Complete gửi danh sách messages theo thứ tự và trả về text
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, opts CompletionOptions) (string, error)
}

// ===========================================================================
// OpenAI Implementation
// ===========================================================================

// openaiClient triển khai Client với openai-go
type openaiClient struct {
	api     openai.Client
	model   openai.ChatModel
	enabled bool
	logger  *zap.Logger
}

// NewClient tạo AI client mới
// apiKey rỗng → client disabled, Complete luôn trả về ErrDisabled
func NewClient(apiKey, model string, logger *zap.Logger) Client {
	c := &openaiClient{
		model:   DefaultModel,
		enabled: apiKey != "",
		logger:  logger,
	}
	if model != "" {
		c.model = openai.ChatModel(model)
	}
	if c.enabled {
		c.api = openai.NewClient(option.WithAPIKey(apiKey))
	} else {
		logger.Warn("OPENAI_API_KEY not set, AI features disabled")
	}
	return c
}

// Enabled client có API key không
func (c *openaiClient) Enabled() bool {
	return c.enabled
}

// Complete gọi chat completion API
func (c *openaiClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, opts CompletionOptions) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("chat completion: empty response")
	}

	return completion.Choices[0].Message.Content, nil
}
