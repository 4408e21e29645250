// Package render turns notes into human-readable text.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/quill/internal/models"
)

// frontmatter is the YAML header of a rendered note.
type frontmatter struct {
	Title string `yaml:"title"`
	Tags  string `yaml:"tags,omitempty"`
	Link  string `yaml:"link,omitempty"`
	Meta  string `yaml:"meta,omitempty"`
}

// Summary returns the list label for a note: its title and meta on two lines.
func Summary(n models.Note) string {
	return n.Title + "\n" + n.Meta
}

// Markdown renders a note as Markdown with a YAML frontmatter block. The
// text follows the frontmatter and the code snippet, if any, is appended
// as a fenced block.
func Markdown(n models.Note) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(frontmatter{Title: n.Title, Tags: n.Tags, Link: n.Link, Meta: n.Meta}); err != nil {
		return "", fmt.Errorf("render: frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render: frontmatter: %w", err)
	}
	buf.WriteString("---\n")

	if n.Text != "" {
		buf.WriteString("\n")
		buf.WriteString(n.Text)
		buf.WriteString("\n")
	}
	if n.CodeSnippet != "" {
		fence := codeFence(n.CodeSnippet)
		buf.WriteString("\n")
		buf.WriteString(fence + "\n")
		buf.WriteString(n.CodeSnippet)
		buf.WriteString("\n" + fence + "\n")
	}
	return buf.String(), nil
}

// codeFence returns a backtick fence longer than any run inside s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
