package feed

import (
	"testing"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"simple tags", "<p>hello <b>world</b></p>", "hello world"},
		{"entities", "Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{"whitespace collapsed", "hello\n\n   world\t!", "hello world !"},
		{"empty", "", ""},
		{"only tags", "<div><span></span></div>", ""},
		{"attributes", `<a href="https://example.com">link</a>`, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkup(tt.input)
			if got != tt.expected {
				t.Errorf("StripMarkup(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
