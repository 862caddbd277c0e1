package scriptgen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultBedrockModel is used when no model is configured for Bedrock.
const DefaultBedrockModel = "anthropic.claude-sonnet-4-6"

type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockOptions configures a BedrockClient.
type BedrockOptions struct {
	Region    string
	ModelID   string
	AccessKey string
	SecretKey string
	MaxTokens int
}

// BedrockClient implements ModelClient using AWS Bedrock with Anthropic models.
type BedrockClient struct {
	client    bedrockInvoker
	modelID   string
	maxTokens int
}

// loadBedrockConfig uses static credentials when both keys are set, otherwise
// the default AWS credential chain.
func loadBedrockConfig(ctx context.Context, opts BedrockOptions) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewBedrockClient creates a Bedrock-backed model client. Setting only one of
// the static keys is rejected.
func NewBedrockClient(ctx context.Context, opts BedrockOptions) (*BedrockClient, error) {
	if (opts.AccessKey == "") != (opts.SecretKey == "") {
		return nil, ErrPartialBedrockKeys
	}

	cfg, err := loadBedrockConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	modelID := opts.ModelID
	if modelID == "" {
		modelID = DefaultBedrockModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &BedrockClient{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelID:   modelID,
		maxTokens: maxTokens,
	}, nil
}

type bedrockContent struct {
	Type   string              `json:"type"`
	Text   string              `json:"text,omitempty"`
	Source *bedrockImageSource `json:"source,omitempty"`
}

type bedrockImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Generate invokes the model with an image block followed by the prompt text.
func (c *BedrockClient) Generate(ctx context.Context, req ModelRequest) (string, error) {
	var content []bedrockContent
	if len(req.Image) > 0 {
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = DefaultImageMIMEType
		}
		content = append(content, bedrockContent{
			Type: "image",
			Source: &bedrockImageSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(req.Image),
			},
		})
	}
	content = append(content, bedrockContent{Type: "text", Text: req.Prompt})

	requestBody := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        c.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
	}

	payloadBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payloadBytes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
