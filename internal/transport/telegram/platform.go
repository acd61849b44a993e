package telegram

import (
	"context"

	"github.com/sandevgo/warden/internal/core"
	tele "gopkg.in/telebot.v3"
)

// Platform is the Bot API behind core.Platform.
type Platform struct {
	bot *tele.Bot
}

func NewPlatform(bot *tele.Bot) *Platform {
	return &Platform{bot: bot}
}

func (p *Platform) BotID() int64 {
	return p.bot.Me.ID
}

func (p *Platform) Member(ctx context.Context, chatID, userID int64) (core.Member, error) {
	m, err := p.bot.ChatMemberOf(&tele.Chat{ID: chatID}, &tele.User{ID: userID})
	if err != nil {
		return core.Member{}, classify("get chat member", err)
	}
	return memberOf(userID, m), nil
}

// Profile looks a user up by id. Only users who talked to the bot or share a chat with it are visible.
func (p *Platform) Profile(ctx context.Context, userID int64) (core.Profile, error) {
	chat, err := p.bot.ChatByID(userID)
	if err != nil {
		return core.Profile{}, classify("get chat", err)
	}
	return profileOfChat(chat), nil
}

func (p *Platform) LookupHandle(ctx context.Context, handle string) (core.Profile, error) {
	chat, err := p.bot.ChatByUsername("@" + handle)
	if err != nil {
		return core.Profile{}, classify("get chat by username", err)
	}
	return profileOfChat(chat), nil
}

// Promote makes the user an administrator whose only right is managing video chats.
func (p *Platform) Promote(ctx context.Context, chatID, userID int64) error {
	member := &tele.ChatMember{
		User:   &tele.User{ID: userID},
		Rights: tele.Rights{CanManageVideoChats: true},
	}
	return classify("promote chat member", p.bot.Promote(&tele.Chat{ID: chatID}, member))
}

// Demote promotes with no rights at all, which the Bot API treats as demotion.
func (p *Platform) Demote(ctx context.Context, chatID, userID int64) error {
	member := &tele.ChatMember{
		User:   &tele.User{ID: userID},
		Rights: tele.NoRights(),
	}
	return classify("demote chat member", p.bot.Promote(&tele.Chat{ID: chatID}, member))
}

func (p *Platform) SetTitle(ctx context.Context, chatID, userID int64, title string) error {
	err := p.bot.SetAdminTitle(&tele.Chat{ID: chatID}, &tele.User{ID: userID}, title)
	return classify("set administrator title", err)
}

func memberOf(userID int64, m *tele.ChatMember) core.Member {
	return core.Member{
		UserID:            userID,
		Status:            core.MemberStatus(m.Role),
		CanPromoteMembers: m.CanPromoteMembers,
	}
}

func profileOfChat(c *tele.Chat) core.Profile {
	return core.Profile{ID: c.ID, Username: c.Username, FirstName: c.FirstName}
}

func profileOfUser(u *tele.User) core.Profile {
	return core.Profile{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}
