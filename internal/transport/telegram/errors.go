package telegram

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sandevgo/warden/internal/core"
	tele "gopkg.in/telebot.v3"
)

// classify wraps a Bot API failure with the matching core sentinel so the
// policy layer can tell a missing user from a missing right or an outage.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, core.ErrTransient, err)
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w: %w", op, sentinelFor(apiErr.Code, apiErr.Description), err)
	}

	// flood control errors carry only their text
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "retry after") || strings.Contains(msg, "(429)") {
		return fmt.Errorf("%s: %w: %w", op, core.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func sentinelFor(code int, description string) error {
	desc := strings.ToLower(description)

	switch {
	case code == 429 || code >= 500:
		return core.ErrTransient
	case code == 403:
		return core.ErrForbidden
	case strings.Contains(desc, "not found"), strings.Contains(desc, "user_id_invalid"), strings.Contains(desc, "participant_id_invalid"):
		return core.ErrNotFound
	default:
		// rights problems come back as 400 with varying texts
		return core.ErrForbidden
	}
}
