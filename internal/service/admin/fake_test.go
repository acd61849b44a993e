package admin

import (
	"context"
	"fmt"

	"github.com/sandevgo/warden/internal/core"
)

const botID = int64(999)

type fakeAccess map[int64]bool

func (a fakeAccess) IsPrivileged(id int64) bool {
	return a[id]
}

type fakePlatform struct {
	members  map[int64]core.Member
	profiles map[int64]core.Profile
	handles  map[string]core.Profile

	memberErr  error
	actionErr  error
	promoted   []int64
	demoted    []int64
	titles     map[int64]string
	lookupHits int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members: map[int64]core.Member{
			botID: {UserID: botID, Status: core.StatusAdministrator, CanPromoteMembers: true},
		},
		profiles: make(map[int64]core.Profile),
		handles:  make(map[string]core.Profile),
		titles:   make(map[int64]string),
	}
}

func (p *fakePlatform) BotID() int64 {
	return botID
}

func (p *fakePlatform) Member(ctx context.Context, chatID, userID int64) (core.Member, error) {
	if p.memberErr != nil {
		return core.Member{}, p.memberErr
	}
	m, ok := p.members[userID]
	if !ok {
		return core.Member{UserID: userID, Status: core.StatusMember}, nil
	}
	return m, nil
}

func (p *fakePlatform) Profile(ctx context.Context, userID int64) (core.Profile, error) {
	prof, ok := p.profiles[userID]
	if !ok {
		return core.Profile{}, fmt.Errorf("chat by id: %w", core.ErrNotFound)
	}
	return prof, nil
}

func (p *fakePlatform) LookupHandle(ctx context.Context, handle string) (core.Profile, error) {
	p.lookupHits++
	prof, ok := p.handles[handle]
	if !ok {
		return core.Profile{}, fmt.Errorf("chat by username: %w", core.ErrNotFound)
	}
	return prof, nil
}

func (p *fakePlatform) Promote(ctx context.Context, chatID, userID int64) error {
	if p.actionErr != nil {
		return p.actionErr
	}
	p.promoted = append(p.promoted, userID)
	return nil
}

func (p *fakePlatform) Demote(ctx context.Context, chatID, userID int64) error {
	if p.actionErr != nil {
		return p.actionErr
	}
	p.demoted = append(p.demoted, userID)
	return nil
}

func (p *fakePlatform) SetTitle(ctx context.Context, chatID, userID int64, title string) error {
	if p.actionErr != nil {
		return p.actionErr
	}
	p.titles[userID] = title
	return nil
}
