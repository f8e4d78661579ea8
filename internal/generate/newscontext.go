// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"strings"

	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// NoNewsContext is the context text used when no articles are available.
const NoNewsContext = "No recent news was found for this topic."

// newsContextHeader opens a non-empty news context block.
const newsContextHeader = "Recent news on the topic:"

// BuildNewsContext renders articles as the text block embedded in prompts.
// Each article contributes a bullet line with its title, an indented line
// with its description when it has a real one, and a trailing blank line.
// Article order is preserved.
func BuildNewsContext(articles []types.NewsArticle) string {
	if len(articles) == 0 {
		return NoNewsContext
	}

	var b strings.Builder
	b.WriteString(newsContextHeader)
	b.WriteString("\n\n")
	for _, a := range articles {
		b.WriteString("• ")
		b.WriteString(a.Title)
		b.WriteString("\n")
		if a.HasDescription() {
			b.WriteString("  ")
			b.WriteString(a.Description)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
