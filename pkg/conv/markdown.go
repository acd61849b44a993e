package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()

	mdEscaper = strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"[", `\[`,
		"]", `\]`,
		"~", `\~`,
		"<", `\<`,
		">", `\>`,
	)
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

// EscapeMarkdown neutralizes markdown control characters in user-supplied text
// (titles, usernames) before it is embedded into a reply.
func EscapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// HTMLToPlain is the fallback used when Telegram refuses to parse our HTML.
func HTMLToPlain(s string) string {
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: false})
	if err != nil {
		return s
	}
	return text
}
