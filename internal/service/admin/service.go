package admin

import (
	"context"
	"strings"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/identity"
	"github.com/sandevgo/warden/pkg/log"
)

// Service enforces who may change whose rights and titles.
type Service struct {
	platform core.Platform
	access   core.AccessConfig
	resolver *identity.Resolver
	titles   *UsedTitles
}

func NewService(
	platform core.Platform,
	access core.AccessConfig,
	resolver *identity.Resolver,
	titles *UsedTitles,
) *Service {
	return &Service{
		platform: platform,
		access:   access,
		resolver: resolver,
		titles:   titles,
	}
}

var errNoAccess = core.NewUserError(core.KindAuth, "You do not have access to this command!")

// Promote grants the target administrator status with the video chat right only.
func (s *Service) Promote(ctx context.Context, req *core.Request) (core.Profile, error) {
	targetID, err := s.authorize(ctx, req, "promote")
	if err != nil {
		return core.Profile{}, err
	}

	if err := s.platform.Promote(ctx, req.ChatID, targetID); err != nil {
		log.FromCtx(ctx).Error().Err(err).Int64("target", targetID).Msg("promote failed")
		return core.Profile{}, core.WrapUserError(core.KindRemote, "Error", err)
	}

	log.FromCtx(ctx).Info().Int64("chat", req.ChatID).Int64("target", targetID).Msg("member promoted")
	return s.profile(ctx, targetID), nil
}

// Demote revokes every administrator right of the target. The chat creator
// and non-administrators are refused.
func (s *Service) Demote(ctx context.Context, req *core.Request) (core.Profile, error) {
	targetID, err := s.authorize(ctx, req, "demote")
	if err != nil {
		return core.Profile{}, err
	}

	target, err := s.platform.Member(ctx, req.ChatID, targetID)
	if err != nil {
		return core.Profile{}, core.WrapUserError(core.KindRemote, "Failed to fetch member data", err)
	}
	if !target.IsAdmin() {
		return core.Profile{}, core.NewUserError(core.KindUsage, "This user is not an administrator.")
	}
	if target.IsOwner() {
		return core.Profile{}, core.NewUserError(core.KindAuth, "The chat creator cannot be demoted!")
	}

	if err := s.platform.Demote(ctx, req.ChatID, targetID); err != nil {
		log.FromCtx(ctx).Error().Err(err).Int64("target", targetID).Msg("demote failed")
		return core.Profile{}, core.WrapUserError(core.KindRemote, "Error", err)
	}

	log.FromCtx(ctx).Info().Int64("chat", req.ChatID).Int64("target", targetID).Msg("member demoted")
	return s.profile(ctx, targetID), nil
}

// SetTitle changes the caller's own administrator title. Each user may do
// this once per chat.
func (s *Service) SetTitle(ctx context.Context, req *core.Request) (string, error) {
	if s.titles.Used(req.ChatID, req.Sender.ID) {
		return "", core.NewUserError(core.KindAuth, "You have already used this command and can no longer change your title.")
	}
	if len(req.Args) == 0 {
		return "", core.NewUserError(core.KindUsage, "Usage: /name <new title>")
	}

	title := strings.TrimSpace(strings.Join(req.Args, " "))
	if title == "" {
		return "", core.NewUserError(core.KindUsage, "Specify a new title")
	}

	member, err := s.platform.Member(ctx, req.ChatID, req.Sender.ID)
	if err != nil {
		return "", core.WrapUserError(core.KindRemote, "Failed to fetch your member data", err)
	}
	// creators have no custom title to set
	if member.Status != core.StatusAdministrator {
		return "", core.NewUserError(core.KindAuth, "Only administrators can change their title.")
	}

	if err := s.platform.SetTitle(ctx, req.ChatID, req.Sender.ID, title); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("set title failed")
		return "", core.WrapUserError(core.KindRemote, "Could not change the title", err)
	}
	s.titles.Mark(ctx, req.ChatID, req.Sender.ID)

	return title, nil
}

// authorize runs the checks shared by promote and demote and returns the target id.
func (s *Service) authorize(ctx context.Context, req *core.Request, verb string) (int64, error) {
	if !s.access.IsPrivileged(req.Sender.ID) {
		return 0, errNoAccess
	}
	if len(req.Args) == 0 && req.ReplyTo == nil {
		return 0, core.NewUserError(core.KindUsage, "Usage: /"+verb+" <user_id|@username> or reply to a message.")
	}

	var arg string
	if len(req.Args) > 0 {
		arg = req.Args[0]
	}
	targetID, err := s.resolver.Resolve(ctx, req.ReplyTo, arg)
	if err != nil {
		return 0, err
	}

	caller, err := s.platform.Member(ctx, req.ChatID, req.Sender.ID)
	if err != nil {
		return 0, core.WrapUserError(core.KindRemote, "Failed to check permissions", err)
	}
	bot, err := s.platform.Member(ctx, req.ChatID, s.platform.BotID())
	if err != nil {
		return 0, core.WrapUserError(core.KindRemote, "Failed to check permissions", err)
	}

	if !caller.IsAdmin() {
		return 0, core.NewUserError(core.KindAuth, "Only administrators and the creator can "+verb+".")
	}
	if !caller.CanDelegate() {
		return 0, core.NewUserError(core.KindAuth, "You are not allowed to manage administrators.")
	}
	if bot.Status != core.StatusAdministrator || !bot.CanPromoteMembers {
		return 0, core.NewUserError(core.KindAuth, "The bot is not allowed to manage administrators!")
	}

	return targetID, nil
}

// profile names the target for the reply, falling back to the bare id.
func (s *Service) profile(ctx context.Context, userID int64) core.Profile {
	p, err := s.platform.Profile(ctx, userID)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Int64("user_id", userID).Msg("profile lookup failed")
		return core.Profile{ID: userID}
	}
	return p
}
