package scriptgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNormalizeBaseURL(t *testing.T) {
	config := DefaultValidationConfig()

	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{name: "empty disables injection", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
		{name: "https url", input: "https://staging.myapp.io", expected: "https://staging.myapp.io"},
		{name: "trailing slash kept", input: "http://localhost:3000/", expected: "http://localhost:3000/"},
		{name: "surrounding whitespace trimmed", input: "  https://a.test  ", expected: "https://a.test"},
		{name: "control characters removed", input: "https://a.\x00test", expected: "https://a.test"},
		{name: "missing scheme", input: "staging.myapp.io", expectError: true},
		{name: "ftp scheme", input: "ftp://files.test", expectError: true},
		{name: "double quote", input: `https://a.test/"x`, expectError: true},
		{name: "backslash", input: `https://a.test\x`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.input, config)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidBaseURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeBaseURL_LengthLimit(t *testing.T) {
	config := &ValidationConfig{MaxBaseURLLength: 20}
	_, err := NormalizeBaseURL("https://example.org/a/very/long/path", config)
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
}

func TestValidateImage(t *testing.T) {
	config := DefaultValidationConfig()

	t.Run("png accepted", func(t *testing.T) {
		assert.NoError(t, ValidateImage(pngHeader, config))
	})

	t.Run("jpeg accepted", func(t *testing.T) {
		assert.NoError(t, ValidateImage([]byte("\xff\xd8\xff\xe0\x00\x10JFIF"), config))
	})

	t.Run("empty rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateImage(nil, config), ErrImageRequired)
	})

	t.Run("text rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateImage([]byte("hello world"), config), ErrUnsupportedImage)
	})

	t.Run("too large", func(t *testing.T) {
		small := &ValidationConfig{MaxImageBytes: 16}
		data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 32)...)
		assert.ErrorIs(t, ValidateImage(data, small), ErrImageTooLarge)
	})
}
