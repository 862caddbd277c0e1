package scriptgen

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
)

// CombinedFilename is the suggested name for downloading the raw response.
const CombinedFilename = "combined_output.txt"

// Artifact base names, in write order.
const (
	ArtifactLocators   = "locators"
	ArtifactActions    = "actions"
	ArtifactTestScript = "test_script"
)

var fallbackContent = map[string]string{
	ArtifactLocators:   "# No locators generated",
	ArtifactActions:    "# No actions generated",
	ArtifactTestScript: "# No test script generated",
}

// Artifact is one named output file.
type Artifact struct {
	Name    string
	Content string
}

// BuildArtifacts maps sections onto the three output files for framework,
// substituting a placeholder comment for every empty section.
func BuildArtifacts(framework Framework, sections Sections) []Artifact {
	ordered := []struct {
		base    string
		content string
	}{
		{ArtifactLocators, sections.Locators},
		{ArtifactActions, sections.Actions},
		{ArtifactTestScript, sections.TestScript},
	}

	artifacts := make([]Artifact, 0, len(ordered))
	for _, a := range ordered {
		content := a.content
		if content == "" {
			content = fallbackContent[a.base]
		}
		artifacts = append(artifacts, Artifact{
			Name:    fmt.Sprintf("%s.%s", a.base, framework.Extension()),
			Content: content,
		})
	}
	return artifacts
}

// ArtifactNames lists the file names of artifacts in order.
func ArtifactNames(artifacts []Artifact) []string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.Name
	}
	return names
}

// ArtifactWriter persists artifacts to the output location.
type ArtifactWriter struct {
	storage storage.BlobStorage
	logger  logger.Logger
}

// NewArtifactWriter creates a writer on top of the given storage backend.
func NewArtifactWriter(blobStorage storage.BlobStorage, log logger.Logger) *ArtifactWriter {
	return &ArtifactWriter{
		storage: blobStorage,
		logger:  log,
	}
}

// Write stores each artifact under its name, overwriting what is there.
// Writes happen in order and stop at the first failure; files already written
// are left in place. It returns the names written so far.
func (w *ArtifactWriter) Write(ctx context.Context, artifacts []Artifact) ([]string, error) {
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := w.storage.Upload(ctx, a.Name, bytes.NewReader([]byte(a.Content))); err != nil {
			w.logger.Error(ctx, "failed to write artifact", map[string]interface{}{
				"error":    err.Error(),
				"artifact": a.Name,
				"written":  written,
			})
			return written, fmt.Errorf("failed to write %s: %w", a.Name, err)
		}
		written = append(written, a.Name)
	}

	w.logger.Debug(ctx, "artifacts written", map[string]interface{}{
		"files": written,
	})
	return written, nil
}
