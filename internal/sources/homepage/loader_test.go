package homepage

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleBookmarks = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go Docs:
        - abbr: GO
          href: go.dev/doc
          description: Language documentation
- Social:
    - Reddit:
        - abbr: RE
          href: https://reddit.com/
    - Private:
        - abbr: PV
          href: {{HOMEPAGE_VAR_PRIVATE_URL}}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	config, err := NewLoader(writeFile(t, sampleBookmarks)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("Load() returned %d categories, want 2", len(config))
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/bookmarks.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("- Developer: [unclosed")); err == nil {
		t.Error("Parse() with invalid yaml should return error")
	}
}

func TestStripTemplateVariablesFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
