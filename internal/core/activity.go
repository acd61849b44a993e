package core

import (
	"context"
	"time"
)

// ActivityLedger is the part of the activity ledger commands use.
type ActivityLedger interface {
	RecordMessage(ctx context.Context, chatID, userID int64)
	Record(chatID, userID int64) (ActivityRecord, bool)
	SnapshotAll(ctx context.Context, now time.Time)
	DecayAll(ctx context.Context)
	Location() *time.Location
}

// Administration applies the promote/demote/title policy to a request.
type Administration interface {
	Promote(ctx context.Context, req *Request) (Profile, error)
	Demote(ctx context.Context, req *Request) (Profile, error)
	SetTitle(ctx context.Context, req *Request) (string, error)
}
