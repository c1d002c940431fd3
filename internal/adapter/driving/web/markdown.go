package web

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	htmlSanitizer = newSanitizer()

	// listMarker matches a line that already starts a markdown list item.
	listMarker = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s`)
)

// newSanitizer allows user-generated content and opens external links
// safely in a new tab.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty or blank input.
func RenderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderInstructions renders recipe instructions. Plain text with one step
// per line becomes a numbered list; anything already using markdown
// structure is rendered as written.
func RenderInstructions(src string) string {
	return RenderMarkdown(numberSteps(src))
}

func numberSteps(src string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var steps []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if listMarker.MatchString(line) || strings.HasPrefix(line, "#") {
			return src
		}
		steps = append(steps, line)
	}

	if len(steps) < 2 {
		return src
	}

	var b strings.Builder
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}
