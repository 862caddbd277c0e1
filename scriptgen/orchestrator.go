package scriptgen

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
)

// Request is one generation request.
type Request struct {
	ID        uuid.UUID
	Image     []byte
	Framework Framework
	BaseURL   string
}

// Result is the outcome of a successful generation.
type Result struct {
	ID       uuid.UUID
	Script   string
	Filename string
	Files    []string
	Warning  string
	Sections Sections
}

// OrchestratorConfig holds orchestrator settings.
type OrchestratorConfig struct {
	// Credential is the model API credential; generation fails fast when empty.
	Credential string

	// FrameworkAwarePrompt switches from the single Playwright template to a
	// prompt tailored to the requested framework.
	FrameworkAwarePrompt bool
}

// Orchestrator drives one generation end to end.
type Orchestrator struct {
	config OrchestratorConfig
	client ModelClient
	writer *ArtifactWriter
	logger logger.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(cfg OrchestratorConfig, client ModelClient, writer *ArtifactWriter, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config: cfg,
		client: client,
		writer: writer,
		logger: log,
	}
}

// generation carries the state that flows between stages.
type generation struct {
	req      Request
	model    ModelRequest
	raw      string
	sections Sections
	files    []string
	warning  string
}

type stage struct {
	name string
	run  func(ctx context.Context, g *generation) error
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{"credential", o.checkCredential},
		{"build_request", o.buildRequest},
		{"invoke", o.invoke},
		{"validate_response", o.validateResponse},
		{"parse", o.parse},
		{"inject", o.inject},
		{"persist", o.persist},
	}
}

// Generate sends the image and prompt to the model, splits the answer into
// three artifacts and writes them. A failed write is reported in
// Result.Warning; the generated text is still returned.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	ctx = logger.ContextWithFields(ctx, map[string]interface{}{
		"generation_id": req.ID.String(),
	})

	o.logger.Info(ctx, "generation started", map[string]interface{}{
		"framework":    req.Framework,
		"image_bytes":  len(req.Image),
		"has_base_url": req.BaseURL != "",
	})

	g := &generation{req: req}
	for _, s := range o.stages() {
		if err := s.run(ctx, g); err != nil {
			o.logger.Error(ctx, "generation failed", map[string]interface{}{
				"stage": s.name,
				"error": err.Error(),
				"kind":  KindOf(err),
			})
			return nil, err
		}
	}

	result := &Result{
		ID:       req.ID,
		Script:   strings.TrimSpace(g.raw),
		Filename: CombinedFilename,
		Files:    g.files,
		Warning:  g.warning,
		Sections: g.sections,
	}

	o.logger.Info(ctx, "generation completed", map[string]interface{}{
		"files":        result.Files,
		"script_bytes": len(result.Script),
		"warning":      result.Warning,
	})
	return result, nil
}

func (o *Orchestrator) checkCredential(ctx context.Context, g *generation) error {
	if o.config.Credential == "" || o.client == nil {
		return &GenerationError{Kind: KindCredentialMissing, Err: ErrCredentialMissing}
	}
	return nil
}

func (o *Orchestrator) buildRequest(ctx context.Context, g *generation) error {
	if !o.config.FrameworkAwarePrompt && g.req.Framework != FrameworkPlaywright {
		o.logger.Warn(ctx, "prompt is Playwright specific; generated code may not match the requested framework", map[string]interface{}{
			"framework": g.req.Framework,
		})
	}

	g.model = ModelRequest{
		Prompt: BuildPrompt(g.req.Framework, o.config.FrameworkAwarePrompt),
	}
	if len(g.req.Image) > 0 {
		g.model.Image = g.req.Image
		g.model.MIMEType = DefaultImageMIMEType
	}
	return nil
}

func (o *Orchestrator) invoke(ctx context.Context, g *generation) error {
	raw, err := o.client.Generate(ctx, g.model)
	if err != nil {
		return &GenerationError{Kind: KindCallFailed, Err: err}
	}
	g.raw = raw
	return nil
}

func (o *Orchestrator) validateResponse(ctx context.Context, g *generation) error {
	if strings.TrimSpace(g.raw) == "" {
		return &GenerationError{Kind: KindEmptyResponse, Err: ErrEmptyResponse}
	}
	return nil
}

func (o *Orchestrator) parse(ctx context.Context, g *generation) error {
	sections, err := SplitStrict(g.raw)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			o.logger.Warn(ctx, "response markers missing; writing placeholder artifacts", map[string]interface{}{
				"marker": parseErr.Marker,
			})
		}
		sections = Sections{}
	} else if sections.IsEmpty() {
		o.logger.Warn(ctx, "response markers found but every section is empty", nil)
	}
	g.sections = sections
	return nil
}

func (o *Orchestrator) inject(ctx context.Context, g *generation) error {
	if g.req.BaseURL == "" || g.sections.TestScript == "" {
		return nil
	}
	g.sections.TestScript = InjectBaseURL(g.sections.TestScript, g.req.BaseURL)
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, g *generation) error {
	artifacts := BuildArtifacts(g.req.Framework, g.sections)
	g.files = ArtifactNames(artifacts)
	if o.writer == nil {
		return nil
	}

	written, err := o.writer.Write(ctx, artifacts)
	if err != nil {
		o.logger.Warn(ctx, "artifacts only partially written", map[string]interface{}{
			"written": written,
		})
		g.warning = err.Error()
	}
	return nil
}
