package core

import "context"

// Platform is the chat service the bot administers. Implementations wrap
// transport errors with ErrNotFound, ErrForbidden or ErrTransient.
type Platform interface {
	BotID() int64
	Member(ctx context.Context, chatID, userID int64) (Member, error)
	Profile(ctx context.Context, userID int64) (Profile, error)
	LookupHandle(ctx context.Context, handle string) (Profile, error)
	Promote(ctx context.Context, chatID, userID int64) error
	Demote(ctx context.Context, chatID, userID int64) error
	SetTitle(ctx context.Context, chatID, userID int64, title string) error
}

// Directory is the slice of Platform the resolver needs.
type Directory interface {
	LookupHandle(ctx context.Context, handle string) (Profile, error)
}
