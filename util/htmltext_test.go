package util

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "paragraphs become blank lines",
			markup:   "<p>First paragraph.</p><p>Second paragraph.</p>",
			expected: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:     "br becomes newline",
			markup:   "line one<br/>line two<br >line three",
			expected: "line one\nline two\nline three",
		},
		{
			name:     "script dropped with content",
			markup:   "<p>keep</p><script>var x = 'drop';</script><p>this</p>",
			expected: "keep\n\nthis",
		},
		{
			name:     "style dropped with content",
			markup:   "<style>p { color: red }</style><p>text</p>",
			expected: "text",
		},
		{
			name:     "inline tags stripped",
			markup:   "<p>a <em>very</em> <strong>bold</strong> claim</p>",
			expected: "a very bold claim",
		},
		{
			name:     "whitespace collapsed",
			markup:   "  some\t\ttext   with no tags  ",
			expected: "some text with no tags",
		},
		{
			name:     "entities decoded",
			markup:   "<p>fish &amp; chips</p>",
			expected: "fish & chips",
		},
		{
			name:     "empty input",
			markup:   "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.markup); got != tt.expected {
				t.Errorf("HTMLToText(%q) = %q, expected %q", tt.markup, got, tt.expected)
			}
		})
	}
}

func TestHTMLToTextIdempotent(t *testing.T) {
	inputs := []string{
		"<p>First.</p><p>Second.</p>",
		"plain text, nothing fancy",
		"multi\n\nparagraph\n\nplain text",
		"<div><p>nested <b>bold</b></p><br></div>",
	}

	for _, in := range inputs {
		once := HTMLToText(in)
		twice := HTMLToText(once)
		if once != twice {
			t.Errorf("Not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
