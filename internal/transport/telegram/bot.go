package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/identity"
	"github.com/sandevgo/warden/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	ctx     context.Context
	bot     *tele.Bot
	router  core.CmdRouter
	ledger  core.ActivityLedger
	handles *identity.HandleCache
	sender  *sender
}

func NewBot(
	ctx context.Context,
	b *tele.Bot,
	router core.CmdRouter,
	ledger core.ActivityLedger,
	handles *identity.HandleCache,
) *Bot {
	bot := &Bot{
		ctx:     log.WithComponent(ctx, "telegram"),
		bot:     b,
		router:  router,
		ledger:  ledger,
		handles: handles,
		sender:  newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, bot.ctx)
			return next(c)
		}
	})
	b.Use(recoverMiddleware)

	for _, cmd := range router.ListCommands() {
		b.Handle("/"+cmd.Name(), bot.handleCommand(cmd.Name()))
	}

	for _, event := range []string{
		tele.OnText,
		tele.OnMedia,
		tele.OnSticker,
		tele.OnLocation,
		tele.OnVenue,
		tele.OnContact,
		tele.OnPoll,
		tele.OnDice,
		tele.OnGame,
		tele.OnPinned,
		tele.OnUserJoined,
		tele.OnUserLeft,
		tele.OnAddedToGroup,
		tele.OnNewGroupTitle,
		tele.OnNewGroupPhoto,
		tele.OnGroupPhotoDeleted,
		tele.OnTopicCreated,
		tele.OnTopicEdited,
		tele.OnVideoChatStarted,
		tele.OnVideoChatEnded,
		tele.OnVideoChatScheduled,
		tele.OnVideoChatParticipants,
	} {
		b.Handle(event, bot.handleActivity)
	}

	return bot
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")

	// Updates that piled up while the bot was down are not counted.
	if err := b.bot.RemoveWebhook(true); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to drop pending updates")
	}

	cmds := make([]tele.Command, 0)
	for _, cmd := range b.router.ListCommands() {
		cmds = append(cmds, tele.Command{Text: cmd.Name(), Description: cmd.Description()})
	}
	if err := b.bot.SetCommands(cmds); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to publish command list")
	}

	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleCommand(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := contextOf(c)
		msg := c.Message()
		if msg == nil || c.Sender() == nil {
			return nil
		}

		req := requestOf(name, msg)
		reply, err := b.router.Execute(ctx, req)
		if err != nil {
			return fmt.Errorf("/%s: %w", name, err)
		}
		if reply == nil {
			return nil
		}

		if err := b.sender.sendReply(ctx, msg.Chat, msg, reply); err != nil {
			return fmt.Errorf("/%s: send reply: %w", name, err)
		}
		return nil
	}
}

// handleActivity counts every non-command message and remembers the sender's handle.
func (b *Bot) handleActivity(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Sender == nil || msg.Chat == nil {
		return nil
	}
	if strings.HasPrefix(msg.Text, "/") {
		return nil
	}

	ctx := contextOf(c)
	if msg.Sender.Username != "" {
		b.handles.Observe(ctx, msg.Sender.Username, msg.Sender.ID)
	}
	b.ledger.RecordMessage(ctx, msg.Chat.ID, msg.Sender.ID)
	return nil
}

func recoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v\n\n%s", r, debug.Stack())
			}
		}()
		return next(c)
	}
}

func contextOf(c tele.Context) context.Context {
	if ctx, ok := c.Get(baseContextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

func requestOf(name string, msg *tele.Message) *core.Request {
	req := &core.Request{
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		Sender:    profileOfUser(msg.Sender),
		Command:   name,
		Args:      strings.Fields(msg.Payload),
		Time:      msg.Time(),
	}
	if msg.Unixtime == 0 {
		req.Time = time.Now()
	}

	if r := msg.ReplyTo; r != nil && r.Sender != nil {
		p := profileOfUser(r.Sender)
		req.ReplyTo = &p
	}
	return req
}
