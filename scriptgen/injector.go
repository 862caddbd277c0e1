package scriptgen

import (
	"fmt"
	"strings"
)

// PlaceholderURL is the example URL the model tends to hard-code in tests.
const PlaceholderURL = "https://example.com"

// BaseURLIdentifier is the constant name bound to the target URL.
const BaseURLIdentifier = "BASE_URL"

// InjectBaseURL rewrites every PlaceholderURL in script to BASE_URL and
// prepends `BASE_URL = "<baseURL without trailing slashes>"`. The substitution
// is textual, so occurrences in comments and unrelated strings change too.
// An empty baseURL returns script untouched.
//
// Not idempotent: a second call adds a second assignment line.
func InjectBaseURL(script, baseURL string) string {
	if baseURL == "" {
		return script
	}

	stripped := strings.TrimRight(baseURL, "/")
	assignment := fmt.Sprintf("%s = %q\n\n", BaseURLIdentifier, stripped)

	return assignment + strings.ReplaceAll(script, PlaceholderURL, BaseURLIdentifier)
}
