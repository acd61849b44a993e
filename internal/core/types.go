package core

import (
	"fmt"
	"time"
)

const (
	AppName       = "Warden"
	AppRepository = "https://github.com/sandevgo/warden"
	AppVersion    = "0.1.0"
)

// ActivityRecord is the per chat×user activity state.
type ActivityRecord struct {
	Score     int   `json:"score"`
	History   []int `json:"history"`
	BaseScore int   `json:"base_score"`
}

// Clone returns a deep copy safe to hand out of the ledger lock.
func (r ActivityRecord) Clone() ActivityRecord {
	history := make([]int, len(r.History))
	copy(history, r.History)
	r.History = history
	return r
}

type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Member is a user's standing in one chat.
type Member struct {
	UserID            int64
	Status            MemberStatus
	CanPromoteMembers bool
}

func (m Member) IsOwner() bool {
	return m.Status == StatusCreator
}

func (m Member) IsAdmin() bool {
	return m.Status == StatusCreator || m.Status == StatusAdministrator
}

// CanDelegate reports whether the member may grant or revoke admin rights.
func (m Member) CanDelegate() bool {
	return m.IsOwner() || (m.Status == StatusAdministrator && m.CanPromoteMembers)
}

type Profile struct {
	ID        int64
	Username  string
	FirstName string
}

// Display is how replies name a user: @handle when known, the id otherwise.
func (p Profile) Display() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return fmt.Sprintf("ID %d", p.ID)
}

// Request is one command invocation as seen by the command layer.
type Request struct {
	ChatID    int64
	ChatTitle string
	Sender    Profile
	ReplyTo   *Profile
	Command   string
	Args      []string
	Time      time.Time
}

// Reply is what a command sends back. Photo replies carry PNG bytes and a caption.
type Reply struct {
	Text    string
	Photo   []byte
	Caption string
}

func TextReply(text string) *Reply {
	return &Reply{Text: text}
}
