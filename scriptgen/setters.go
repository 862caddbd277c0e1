package scriptgen

import "strings"

// SetStatus returns a setter that updates the generation status.
func SetStatus(status GenerationStatus) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{"status": status}
	}
}

// SetErrorMessage returns a setter that updates the error message.
func SetErrorMessage(message string) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{"error_message": message}
	}
}

// SetWarning returns a setter that records a non-fatal problem.
func SetWarning(warning string) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{"warning": warning}
	}
}

// SetCombinedPath returns a setter that updates the combined text location and size.
func SetCombinedPath(path string, size int64) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{
			"combined_path": path,
			"file_size":     size,
		}
	}
}

// SetArtifacts returns a setter that records the combined filename and the
// names of the written artifacts.
func SetArtifacts(filename string, files []string) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{
			"file_name": filename,
			"files":     strings.Join(files, ","),
		}
	}
}

// OutcomeSetters returns the updates that complete a pending record with the
// outcome of Orchestrator.Generate.
func OutcomeSetters(result *Result, genErr error) []UpdateSetter {
	if genErr != nil {
		return []UpdateSetter{
			SetStatus(StatusFailed),
			SetErrorMessage(genErr.Error()),
		}
	}

	setters := []UpdateSetter{
		SetStatus(StatusCompleted),
		SetArtifacts(result.Filename, result.Files),
	}
	if result.Warning != "" {
		setters = append(setters, SetWarning(result.Warning))
	}
	return setters
}
