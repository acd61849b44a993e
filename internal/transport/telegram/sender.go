package telegram

import (
	"bytes"
	"context"
	"strings"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/conv"
	"github.com/sandevgo/warden/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendReply delivers a command reply to the chat, quoting the command message.
func (s *sender) sendReply(ctx context.Context, to tele.Recipient, replyTo *tele.Message, reply *core.Reply) error {
	if reply.Photo != nil {
		return s.sendPhoto(ctx, to, replyTo, reply.Photo, reply.Caption)
	}
	return s.sendMarkdown(ctx, to, replyTo, reply.Text)
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
// A chunk Telegram refuses to parse is resent as plain text.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, replyTo *tele.Message, md string) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	chunks := splitHTML(html, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
		if i == 0 {
			opts.ReplyTo = replyTo
		}

		_, err := s.bot.Send(to, chunk, opts)
		if err != nil && isParseError(err) {
			logger.Warn().Err(err).Int("chunk", i).Msg("telegram rejected html, sending plain text")
			opts.ParseMode = tele.ModeDefault
			_, err = s.bot.Send(to, conv.HTMLToPlain(chunk), opts)
		}
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

func (s *sender) sendPhoto(ctx context.Context, to tele.Recipient, replyTo *tele.Message, png []byte, caption string) error {
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	if _, err := s.bot.Send(to, photo, &tele.SendOptions{ReplyTo: replyTo}); err != nil {
		log.FromCtx(ctx).Error().Err(err).Int("bytes", len(png)).Msg("failed to send telegram photo")
		return err
	}
	return nil
}

func isParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
