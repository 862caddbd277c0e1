package scriptgen

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStorage accepts uploads until it reaches failOn.
type failingStorage struct {
	storage.BlobStorage
	failOn   string
	uploaded []string
}

func (f *failingStorage) Upload(ctx context.Context, path string, reader io.Reader) error {
	if path == f.failOn {
		return errors.New("disk full")
	}
	f.uploaded = append(f.uploaded, path)
	return nil
}

func TestBuildArtifacts(t *testing.T) {
	artifacts := BuildArtifacts(FrameworkPlaywright, Sections{
		Locators:   "L",
		TestScript: "T",
	})

	require.Len(t, artifacts, 3)
	assert.Equal(t, []string{"locators.py", "actions.py", "test_script.py"}, ArtifactNames(artifacts))
	assert.Equal(t, "L", artifacts[0].Content)
	assert.Equal(t, "# No actions generated", artifacts[1].Content)
	assert.Equal(t, "T", artifacts[2].Content)
}

func TestBuildArtifacts_AllFallbacks(t *testing.T) {
	artifacts := BuildArtifacts(FrameworkSelenium, Sections{})

	assert.Equal(t, "# No locators generated", artifacts[0].Content)
	assert.Equal(t, "# No actions generated", artifacts[1].Content)
	assert.Equal(t, "# No test script generated", artifacts[2].Content)
}

func TestArtifactWriter_CreatesDirAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "playwright_project")
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	writer := NewArtifactWriter(local, logger.NewTestLogger())
	ctx := context.Background()

	_, err = writer.Write(ctx, BuildArtifacts(FrameworkPlaywright, Sections{Locators: "first"}))
	require.NoError(t, err)

	written, err := writer.Write(ctx, BuildArtifacts(FrameworkPlaywright, Sections{Locators: "second"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"locators.py", "actions.py", "test_script.py"}, written)

	data, err := os.ReadFile(filepath.Join(dir, "locators.py"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestArtifactWriter_StopsAtFirstFailure(t *testing.T) {
	fake := &failingStorage{failOn: "actions.py"}
	log := logger.NewTestLogger()
	writer := NewArtifactWriter(fake, log)

	written, err := writer.Write(context.Background(), BuildArtifacts(FrameworkPlaywright, Sections{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "actions.py")
	assert.Equal(t, []string{"locators.py"}, written)
	assert.Equal(t, []string{"locators.py"}, fake.uploaded)
	assert.Len(t, log.EntriesAt("error"), 1)
}
