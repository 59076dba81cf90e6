package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name: "emphasis",
			in:   "**bold** and *italic*",
			want: []string{"<strong>bold</strong>", "<em>italic</em>"},
		},
		{
			name: "fenced code",
			in:   "## Go\n\n```go\nfmt.Println(1)\n```\n",
			want: []string{"<h2>Go</h2>", "<pre><code", "fmt.Println(1)"},
		},
		{
			name: "list",
			in:   "- one\n- two\n",
			want: []string{"<ul>", "<li>one</li>", "<li>two</li>"},
		},
		{
			name:    "raw html dropped",
			in:      "hello\n\n<script>alert(1)</script>\n\n<b onclick=\"x()\">hi</b>",
			want:    []string{"hello"},
			notWant: []string{"<script", "onclick"},
		},
		{
			name:    "images dropped",
			in:      "look ![x](javascript:alert(1)) and ![cat](https://example.com/cat.png)",
			want:    []string{"look"},
			notWant: []string{"<img", "javascript:"},
		},
		{
			name:    "unsafe link",
			in:      "[click](javascript:alert(1))",
			notWant: []string{"href=\"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Markdown(tt.in))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Markdown(%q) = %q, missing %q", tt.in, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Markdown(%q) = %q, contains %q", tt.in, got, nw)
				}
			}
		})
	}
}
