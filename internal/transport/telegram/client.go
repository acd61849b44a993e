package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
	"github.com/sandevgo/warden/pkg/retry"
	tele "gopkg.in/telebot.v3"
)

// NewClient creates the Bot API client. Creating it calls getMe, which is
// retried while the failure looks transient. Updates are handled one at a time
// and handler failures are reported to the operator.
func NewClient(ctx context.Context, cfg *config.TelegramConfig) (*tele.Bot, error) {
	rep := newReporter(cfg.GetReportTo())
	pref := newSettings(cfg, rep.handler(log.WithComponent(ctx, "telegram")))

	rc := retry.NewDefaultConfig()
	rc.Retryable = func(err error) bool {
		return errors.Is(err, core.ErrTransient)
	}

	var b *tele.Bot
	err := retry.NewRetrier(rc).Do(ctx, func(ctx context.Context) error {
		var err error
		b, err = tele.NewBot(pref)
		if err != nil {
			err = classify("get me", err)
			log.FromCtx(ctx).Warn().Err(err).Msg("telegram bootstrap failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	rep.attach(b)

	log.FromCtx(ctx).Info().Str("username", b.Me.Username).Int64("id", b.Me.ID).Msg("telegram bot authorized")
	return b, nil
}

func newSettings(cfg *config.TelegramConfig, onError func(error, tele.Context)) tele.Settings {
	return tele.Settings{
		Token:       cfg.Token,
		Poller:      &tele.LongPoller{Timeout: cfg.PollTimeout},
		Synchronous: true,
		OnError:     onError,
	}
}
