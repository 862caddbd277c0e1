package scriptgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModelClient struct {
	response string
	err      error
	calls    int
	last     ModelRequest
}

func (f *fakeModelClient) Generate(ctx context.Context, req ModelRequest) (string, error) {
	f.calls++
	f.last = req
	return f.response, f.err
}

type orchestratorFixture struct {
	dir    string
	client *fakeModelClient
	log    *logger.TestLogger
	orch   *Orchestrator
}

func newOrchestratorFixture(t *testing.T, cfg OrchestratorConfig, client *fakeModelClient) *orchestratorFixture {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "playwright_project")
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	log := logger.NewTestLogger()
	return &orchestratorFixture{
		dir:    dir,
		client: client,
		log:    log,
		orch:   NewOrchestrator(cfg, client, NewArtifactWriter(local, log), log),
	}
}

func (f *orchestratorFixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerate_WellFormedResponse(t *testing.T) {
	raw := "###LOCATORS###\nL1\n###ACTIONS###\nA1\n###TEST###\nT1 https://example.com"
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: raw})

	result, err := f.orch.Generate(context.Background(), Request{
		Image:     pngHeader,
		Framework: FrameworkPlaywright,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, raw, result.Script)
	assert.Equal(t, "combined_output.txt", result.Filename)
	assert.Empty(t, result.Warning)
	assert.Equal(t, []string{"locators.py", "actions.py", "test_script.py"}, result.Files)

	assert.Equal(t, "L1", f.read(t, "locators.py"))
	assert.Equal(t, "A1", f.read(t, "actions.py"))
	assert.Equal(t, "T1 https://example.com", f.read(t, "test_script.py"))
}

func TestGenerate_InjectsBaseURL(t *testing.T) {
	raw := "###LOCATORS###\nL\n###ACTIONS###\nA\n###TEST###\npage.goto(\"https://example.com/login\")"
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: raw})

	_, err := f.orch.Generate(context.Background(), Request{
		Image:     pngHeader,
		Framework: FrameworkPlaywright,
		BaseURL:   "https://staging.myapp.io/",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"BASE_URL = \"https://staging.myapp.io\"\n\npage.goto(\"BASE_URL/login\")",
		f.read(t, "test_script.py"))
}

func TestGenerate_NoMarkersWritesPlaceholders(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: "Sorry, I cannot help."})

	result, err := f.orch.Generate(context.Background(), Request{
		Image:     pngHeader,
		Framework: FrameworkPlaywright,
		BaseURL:   "https://staging.myapp.io",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sorry, I cannot help.", result.Script)
	assert.Equal(t, "# No locators generated", f.read(t, "locators.py"))
	assert.Equal(t, "# No actions generated", f.read(t, "actions.py"))
	assert.Equal(t, "# No test script generated", f.read(t, "test_script.py"))
	assert.NotEmpty(t, f.log.EntriesAt("warn"))
}

func TestGenerate_CredentialMissing(t *testing.T) {
	client := &fakeModelClient{response: "unused"}
	f := newOrchestratorFixture(t, OrchestratorConfig{}, client)

	result, err := f.orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkPlaywright})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, KindCredentialMissing, KindOf(err))
	assert.ErrorIs(t, err, ErrCredentialMissing)
	assert.Zero(t, client.calls)

	_, statErr := os.Stat(filepath.Join(f.dir, "locators.py"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_CallFailed(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{err: providerErr})

	result, err := f.orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkPlaywright})

	assert.Nil(t, result)
	assert.Equal(t, KindCallFailed, KindOf(err))
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, "model call failed: quota exceeded", err.Error())
}

func TestGenerate_EmptyResponse(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: "  \n "})

	result, err := f.orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkPlaywright})

	assert.Nil(t, result)
	assert.Equal(t, KindEmptyResponse, KindOf(err))

	_, statErr := os.Stat(filepath.Join(f.dir, "test_script.py"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_WriteFailureBecomesWarning(t *testing.T) {
	raw := "###LOCATORS###L###ACTIONS###A###TEST###T"
	log := logger.NewTestLogger()
	fake := &failingStorage{failOn: "test_script.py"}
	orch := NewOrchestrator(OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: raw}, NewArtifactWriter(fake, log), log)

	result, err := orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkPlaywright})

	require.NoError(t, err)
	assert.Equal(t, raw, result.Script)
	assert.Contains(t, result.Warning, "test_script.py")
	assert.Equal(t, []string{"locators.py", "actions.py", "test_script.py"}, result.Files)
	assert.Len(t, fake.uploaded, 2)
}

func TestGenerate_MarkersWithEmptySections(t *testing.T) {
	raw := "###LOCATORS###  ###ACTIONS###\n###TEST###"
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: raw})

	result, err := f.orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkPlaywright})
	require.NoError(t, err)

	assert.Equal(t, []string{"locators.py", "actions.py", "test_script.py"}, result.Files)
	assert.Equal(t, "# No locators generated", f.read(t, "locators.py"))

	var warned bool
	for _, e := range f.log.EntriesAt("warn") {
		if e.Message == "response markers found but every section is empty" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestGenerate_RequestShape(t *testing.T) {
	client := &fakeModelClient{response: "x"}
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, client)

	_, err := f.orch.Generate(context.Background(), Request{Image: pngHeader, Framework: FrameworkSelenium})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "image/png", client.last.MIMEType)
	assert.Equal(t, pngHeader, client.last.Image)
	assert.Equal(t, BuildPrompt(FrameworkPlaywright, false), client.last.Prompt)

	var warned bool
	for _, e := range f.log.EntriesAt("warn") {
		if e.Fields["framework"] == FrameworkSelenium {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning about the Playwright-only prompt")
}

func TestGenerate_EmptyImageOmitted(t *testing.T) {
	client := &fakeModelClient{response: "x"}
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key", FrameworkAwarePrompt: true}, client)

	_, err := f.orch.Generate(context.Background(), Request{Framework: FrameworkSelenium})
	require.NoError(t, err)

	assert.Nil(t, client.last.Image)
	assert.Empty(t, client.last.MIMEType)
	assert.Contains(t, client.last.Prompt, "WebDriverWait")
}

func TestGenerate_LogsCarryGenerationID(t *testing.T) {
	id := uuid.New()
	f := newOrchestratorFixture(t, OrchestratorConfig{Credential: "key"}, &fakeModelClient{response: "x"})

	result, err := f.orch.Generate(context.Background(), Request{ID: id, Image: pngHeader, Framework: FrameworkPlaywright})
	require.NoError(t, err)
	assert.Equal(t, id, result.ID)

	entries := f.log.Entries()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, id.String(), e.Fields["generation_id"], e.Message)
	}
}
