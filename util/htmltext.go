package util

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText converts markup into plain reading text. Script and style
// blocks are dropped with their content, closing paragraph tags become
// paragraph breaks, line break tags become newlines, every other tag is
// stripped. Whitespace runs collapse to single spaces within a line and
// paragraph breaks are kept as a single blank line.
func HTMLToText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skipElement(z, string(name))
			case "br":
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "p" {
				sb.WriteString("\n\n")
			}
		}
	}
}

// skipElement consumes tokens until the matching end tag is seen.
func skipElement(z *html.Tokenizer, tag string) {
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt == html.EndTagToken {
			name, _ := z.TagName()
			if string(name) == tag {
				return
			}
		}
	}
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
