package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/warden/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxReportLen = 3900

// messenger is the part of the Bot API the reporter sends through.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// reporter forwards unhandled failures to the operator.
type reporter struct {
	api messenger
	to  int64
}

func newReporter(to int64) *reporter {
	return &reporter{to: to}
}

// attach sets the client used for reports. Until then failures are only logged.
func (r *reporter) attach(api messenger) {
	r.api = api
}

// handler is installed as the bot's OnError callback.
func (r *reporter) handler(ctx context.Context) func(error, tele.Context) {
	return func(err error, c tele.Context) {
		r.report(ctx, err, c)
	}
}

func (r *reporter) report(ctx context.Context, err error, c tele.Context) {
	text := formatReport(err, c)
	log.FromCtx(ctx).Error().Err(err).Msg(text)

	if r.to == 0 || r.api == nil {
		return
	}
	if _, sendErr := r.api.Send(tele.ChatID(r.to), truncate(text, maxReportLen)); sendErr != nil {
		log.FromCtx(ctx).Error().Err(sendErr).Int64("to", r.to).Msg("failed to report error to operator")
	}
}

func formatReport(err error, c tele.Context) string {
	var sb strings.Builder
	sb.WriteString("⚠️ Bot error!")

	if c != nil {
		if chat := c.Chat(); chat != nil {
			name := chat.Title
			if name == "" {
				name = fmt.Sprint(chat.ID)
			}
			fmt.Fprintf(&sb, "\n💬 Chat: %s", name)
		}
		if u := c.Sender(); u != nil {
			name := u.Username
			if name == "" {
				name = u.FirstName
			}
			fmt.Fprintf(&sb, "\n👤 User: @%s (%d)", name, u.ID)
		}
	}

	fmt.Fprintf(&sb, "\n\n%v", err)
	return sb.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
