package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/util"
)

const defaultAnthropicModel = anthropic.ModelClaudeSonnet4_20250514

// AnthropicProvider implements the Provider interface for Anthropic Claude
// models, either directly or through AWS Bedrock.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
	config Config
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if config.HTTPProxy != "" || config.HTTPSProxy != "" {
		opts = append(opts, option.WithHTTPClient(util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy, config.NoProxy)))
	}

	model := anthropic.Model(config.Model)
	if model == "" {
		model = defaultAnthropicModel
	}

	if config.UseBedrock {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if config.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(config.AWSRegion))
		}
		if config.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(config.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), loadOpts...))
		model = bedrockModel(model)
	} else {
		apiKey := config.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
		config: config,
	}, nil
}

// bedrockModel maps public model names to Bedrock cross-region inference profiles
func bedrockModel(model anthropic.Model) anthropic.Model {
	profiles := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
		anthropic.ModelClaudeHaiku4_5_20251001:  "us.anthropic.claude-haiku-4-5-20251001-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if p, ok := profiles[model]; ok {
		return anthropic.Model(p)
	}
	return model
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable makes a minimal one-token call
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hi")),
		},
	})
	if err != nil {
		zap.L().Warn("anthropic API check failed", zap.Error(err))
		return false
	}
	return true
}

// Generate runs one Messages API call. Anthropic has no response-format
// switch here, so a schema is enforced through the system prompt and the
// caller's validation.
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.model
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   int64(p.config.maxTokens(req, 1000)),
		Temperature: anthropic.Float(p.config.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	system := req.System
	if req.Schema != nil {
		system = strings.TrimSpace(system + "\n\n" + JSONOnlyInstruction(req.Schema))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(variant.Text)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &GenerateResponse{
		Text:       text,
		Model:      string(resp.Model),
		TokensUsed: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}
