package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultImageMIMEType is sent with every image regardless of the upload format.
const DefaultImageMIMEType = "image/png"

// ModelRequest is the outbound payload for one generation call.
type ModelRequest struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

// ModelClient defines the interface for calling a hosted generative model.
// Implementations can use different backends (Gemini, AWS Bedrock, ...).
type ModelClient interface {
	// Generate sends the prompt and image and returns the text of the answer.
	Generate(ctx context.Context, req ModelRequest) (string, error)
}

// ProviderConfig selects and configures a ModelClient.
type ProviderConfig struct {
	Provider         string // "gemini" or "bedrock"
	Model            string
	APIKey           string
	BedrockRegion    string
	BedrockAccessKey string
	BedrockSecretKey string
	MaxTokens        int
}

// ErrPartialBedrockKeys is returned when only one of the static Bedrock keys is set.
var ErrPartialBedrockKeys = errors.New("bedrock access key and secret key must be set together")

// ResolveCredential returns the credential the configured provider will
// authenticate with. For Gemini that is the API key, "" when unset. For Bedrock
// it is the static access key when configured, otherwise the access key ID
// retrieved through the default AWS credential chain; ErrCredentialMissing
// wraps the chain's failure.
func (c ProviderConfig) ResolveCredential(ctx context.Context) (string, error) {
	if !strings.EqualFold(c.Provider, "bedrock") {
		return c.APIKey, nil
	}

	opts := c.bedrockOptions()
	if (opts.AccessKey == "") != (opts.SecretKey == "") {
		return "", ErrPartialBedrockKeys
	}
	if opts.AccessKey != "" {
		return opts.AccessKey, nil
	}

	awsCfg, err := loadBedrockConfig(ctx, opts)
	if err != nil {
		return "", err
	}
	if awsCfg.Credentials == nil {
		return "", ErrCredentialMissing
	}
	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentialMissing, err)
	}
	return creds.AccessKeyID, nil
}

func (c ProviderConfig) bedrockOptions() BedrockOptions {
	return BedrockOptions{
		Region:    c.BedrockRegion,
		ModelID:   c.Model,
		AccessKey: c.BedrockAccessKey,
		SecretKey: c.BedrockSecretKey,
		MaxTokens: c.MaxTokens,
	}
}

// NewModelClient builds the client for cfg.Provider. Callers should check
// ResolveCredential first; a client is never needed when it is empty.
func NewModelClient(ctx context.Context, cfg ProviderConfig) (ModelClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "bedrock":
		return NewBedrockClient(ctx, cfg.bedrockOptions())
	default:
		return nil, fmt.Errorf("unsupported model provider: %q", cfg.Provider)
	}
}
