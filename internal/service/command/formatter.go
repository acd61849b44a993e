package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/conv"
)

// ResponseFormatter builds markdown replies. Text from users or the
// platform is escaped before it is embedded.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Plain(text string) string {
	return conv.EscapeMarkdown(text)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ %s\n", message)
}

func (f *ResponseFormatter) Info(emoji, message string) string {
	return fmt.Sprintf("%s %s\n", emoji, message)
}

// Error renders a user-facing failure. Remote failures carry the platform's own text.
func (f *ResponseFormatter) Error(err *core.UserError) string {
	emoji := "❌"
	if err.Kind == core.KindAuth {
		emoji = "🚫"
	}

	msg := conv.EscapeMarkdown(err.Msg)
	if err.Kind == core.KindRemote && err.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, conv.EscapeMarkdown(err.Err.Error()))
	}
	return fmt.Sprintf("%s %s\n", emoji, msg)
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}
