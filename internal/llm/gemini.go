package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ppiankov/basir/internal/schema"
	"github.com/ppiankov/basir/internal/util"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable looks up the configured model
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.Models.Get(ctx, p.modelName(GenerateRequest{}), nil); err != nil {
		zap.L().Warn("gemini API check failed", zap.Error(err))
		return false
	}
	return true
}

func (p *GeminiProvider) modelName(req GenerateRequest) string {
	if m := p.config.model(req); m != "" {
		return m
	}
	return "gemini-2.5-flash"
}

// Generate runs one GenerateContent call. A request schema becomes the
// response schema with an application/json MIME type.
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.modelName(req)

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.config.Temperature)),
		MaxOutputTokens: int32(p.config.maxTokens(req, 4096)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(req.Schema)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &GenerateResponse{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
	}, nil
}

// geminiSchema converts an output schema to the OpenAPI subset Gemini accepts
func geminiSchema(s *schema.Schema) *genai.Schema {
	fields := s.Fields()
	props := make(map[string]*genai.Schema, len(fields))
	var required, ordering []string

	for _, f := range fields {
		var fs *genai.Schema
		switch f.Type {
		case schema.String, schema.OptionalString:
			fs = &genai.Schema{Type: genai.TypeString}
		case schema.StringList, schema.OptionalStringList:
			fs = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
		case schema.OptionalBool:
			fs = &genai.Schema{Type: genai.TypeBoolean}
		}
		fs.Description = f.Description
		if f.Type.Optional() {
			fs.Nullable = genai.Ptr(true)
		} else {
			required = append(required, f.Name)
		}
		props[f.Name] = fs
		ordering = append(ordering, f.Name)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			s.Key(): {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:             genai.TypeObject,
					Properties:       props,
					Required:         required,
					PropertyOrdering: ordering,
				},
			},
		},
		Required: []string{s.Key()},
	}
}
