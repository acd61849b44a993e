package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

// Resolver turns a command target into a user id.
type Resolver struct {
	cache *HandleCache
	dir   core.Directory
}

func NewResolver(cache *HandleCache, dir core.Directory) *Resolver {
	return &Resolver{cache: cache, dir: dir}
}

// Resolve picks the target in order: the replied-to user, a numeric id,
// then an @handle from the cache or the directory. Successful directory
// lookups are cached.
func (r *Resolver) Resolve(ctx context.Context, replyTo *core.Profile, arg string) (int64, error) {
	logger := log.FromCtx(ctx)

	if replyTo != nil {
		logger.Debug().Int64("user_id", replyTo.ID).Msg("target taken from reply")
		return replyTo.ID, nil
	}

	arg = strings.TrimSpace(arg)
	if isDigits(arg) {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return 0, core.WrapUserError(core.KindUsage, "Specify a user_id, @username or reply to a message.", core.ErrInvalidTarget)
		}
		return id, nil
	}

	if !strings.HasPrefix(arg, "@") || len(arg) == 1 {
		return 0, core.WrapUserError(core.KindUsage, "Specify a user_id, @username or reply to a message.", core.ErrInvalidTarget)
	}

	handle := NormalizeHandle(arg)
	if id, ok := r.cache.Lookup(handle); ok {
		logger.Debug().Str("handle", handle).Int64("user_id", id).Msg("target found in handle cache")
		return id, nil
	}

	profile, err := r.dir.LookupHandle(ctx, handle)
	if err != nil {
		logger.Warn().Err(err).Str("handle", handle).Msg("handle lookup failed")
		return 0, core.WrapUserError(
			core.KindResolution,
			fmt.Sprintf("Could not find user @%s. Ask them to write a message in the chat so the bot remembers them.", handle),
			err,
		)
	}

	r.cache.Observe(ctx, handle, profile.ID)
	return profile.ID, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
