// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// titleInstructions opens the title prompt for each known style.
var titleInstructions = map[types.WritingStyle]string{
	types.StyleProfessional: "Write a professional and informative headline",
	types.StyleCasual:       "Write a relaxed and engaging headline",
	types.StyleCreative:     "Write a creative and memorable headline",
	types.StyleTechnical:    "Write a technically precise and detailed headline",
}

const defaultTitleInstruction = "Write a headline"

// contentTones describes the tone of the article body for each known style.
var contentTones = map[types.WritingStyle]string{
	types.StyleProfessional: "Professional tone with a structured approach and expert perspectives.",
	types.StyleCasual:       "Relaxed, conversational tone with plain explanations.",
	types.StyleCreative:     "Creative approach with metaphors and emotional color.",
	types.StyleTechnical:    "Technical precision with detail and domain-specific terminology.",
}

const defaultContentTone = ""

// TitleInstruction returns the title phrasing for style, falling back to a
// generic instruction for unknown styles.
func TitleInstruction(style types.WritingStyle) string {
	if s, ok := titleInstructions[style]; ok {
		return s
	}
	return defaultTitleInstruction
}

// ContentTone returns the tone guidance for style, or an empty string for
// unknown styles.
func ContentTone(style types.WritingStyle) string {
	if s, ok := contentTones[style]; ok {
		return s
	}
	return defaultContentTone
}

// System prompts for each stage.
const (
	titleSystemPrompt   = "You are an experienced copywriter who specializes in headlines for blogs and news articles."
	metaSystemPrompt    = "You are an SEO specialist. You write short but informative meta descriptions."
	contentSystemPrompt = "You are a professional blogger and copywriter with many years of experience. You write well-structured, high-quality content."
)

var titlePromptTmpl = template.Must(template.New("title").Parse(`{{.Instruction}} for an article on the topic "{{.Topic}}".

{{.NewsContext}}

Headline requirements:
- Length: 5-10 words
- Catchy and engaging
- Matches the topic
- Reflects the recent news, if there is any
- No quotation marks
- Written in {{.Language}}
`))

var metaPromptTmpl = template.Must(template.New("meta").Parse(`Write a meta description for an article titled "{{.Title}}".

Requirements:
- Length: 150-160 characters
- Informative and engaging
- Contains the key terms
- Encourages the reader to open the article
- Style: {{.Style}}
- Written in {{.Language}}
`))

var contentPromptTmpl = template.Must(template.New("content").Parse(`Write a detailed article on the topic "{{.Topic}}" titled "{{.Title}}".

{{.NewsContext}}

Writing style: {{.Style}}
{{- if .Tone}}
{{.Tone}}
{{- end}}

Article requirements:
1. Length: 500-800 words
2. Structure: introduction, main body, conclusion
3. Use subheadings
4. Paragraphs of 3-5 sentences
5. Factual accuracy
6. Reflect the recent news, if there is any
7. Practical examples and insights
8. A call to action in the conclusion
9. Written in {{.Language}}

The article should be useful and pleasant to read.
`))

// promptData is the value passed to every prompt template.
type promptData struct {
	Topic       string
	Title       string
	NewsContext string
	Style       types.WritingStyle
	Instruction string
	Tone        string
	Language    string
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
