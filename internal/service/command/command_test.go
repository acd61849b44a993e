package command

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/activity"
	"github.com/sandevgo/warden/internal/service/chart"
	"github.com/sandevgo/warden/internal/storage/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chatID    = int64(-100)
	privID    = int64(1)
	regularID = int64(2)
)

type fakeAccess map[int64]bool

func (a fakeAccess) IsPrivileged(id int64) bool {
	return a[id]
}

type fakeAdmin struct {
	target core.Profile
	title  string
	err    error
}

func (a *fakeAdmin) Promote(ctx context.Context, req *core.Request) (core.Profile, error) {
	return a.target, a.err
}

func (a *fakeAdmin) Demote(ctx context.Context, req *core.Request) (core.Profile, error) {
	return a.target, a.err
}

func (a *fakeAdmin) SetTitle(ctx context.Context, req *core.Request) (string, error) {
	return a.title, a.err
}

type fakeRenderer struct {
	got chart.Projection
}

func (r *fakeRenderer) Render(p chart.Projection) ([]byte, error) {
	r.got = p
	return []byte("png"), nil
}

type fixture struct {
	router   *Router
	ledger   *activity.Ledger
	admin    *fakeAdmin
	renderer *fakeRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := activity.NewLedger(memstore.New(), config.FixedZone(3))
	admin := &fakeAdmin{}
	renderer := &fakeRenderer{}
	router := New(NewCommands(fakeAccess{privID: true}, ledger, admin, renderer))
	return &fixture{router: router, ledger: ledger, admin: admin, renderer: renderer}
}

func request(sender int64, command string, args ...string) *core.Request {
	return &core.Request{
		ChatID:  chatID,
		Sender:  core.Profile{ID: sender},
		Command: command,
		Args:    args,
		Time:    time.Date(2025, 3, 2, 22, 30, 0, 0, time.UTC),
	}
}

func TestRouter_UnknownCommandIsIgnored(t *testing.T) {
	f := newFixture(t)

	reply, err := f.router.Execute(context.Background(), request(privID, "weather"))
	assert.NoError(t, err)
	assert.Nil(t, reply)
}

func TestRouter_ListCommands(t *testing.T) {
	f := newFixture(t)

	var names []string
	for _, c := range f.router.ListCommands() {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Description())
	}
	assert.Equal(t, []string{"chart", "demote", "myid", "name", "promote", "snapshot", "start", "weekly"}, names)
}

func TestRouter_UserErrorBecomesReply(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "auth",
			err:  core.NewUserError(core.KindAuth, "You do not have access to this command!"),
			want: "🚫 You do not have access to this command!\n",
		},
		{
			name: "usage escapes markdown",
			err:  core.NewUserError(core.KindUsage, "Usage: /promote <user_id|@username>"),
			want: "❌ Usage: /promote \\<user\\_id|@username\\>\n",
		},
		{
			name: "remote carries cause",
			err:  core.WrapUserError(core.KindRemote, "Error", errors.New("CHAT_ADMIN_REQUIRED")),
			want: "❌ Error: CHAT\\_ADMIN\\_REQUIRED\n",
		},
		{
			name: "resolution hides cause",
			err:  core.WrapUserError(core.KindResolution, "Could not find user", core.ErrNotFound),
			want: "❌ Could not find user\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.admin.err = fmt.Errorf("wrapped: %w", tt.err)

			reply, err := f.router.Execute(context.Background(), request(privID, "promote", "5"))
			require.NoError(t, err)
			require.NotNil(t, reply)
			assert.Equal(t, tt.want, reply.Text)
		})
	}
}

func TestRouter_OtherErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.admin.err = boom

	reply, err := f.router.Execute(context.Background(), request(privID, "demote", "5"))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, reply)
}

func TestPromoteDemoteName_Replies(t *testing.T) {
	f := newFixture(t)
	f.admin.target = core.Profile{ID: 5, Username: "some_user"}
	f.admin.title = "*Boss*"
	ctx := context.Background()

	reply, err := f.router.Execute(ctx, request(privID, "promote", "@some_user"))
	require.NoError(t, err)
	assert.Equal(t, "✅ User @some\\_user was made an administrator without rights.\n", reply.Text)

	reply, err = f.router.Execute(ctx, request(privID, "demote", "5"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "is no longer an administrator")

	reply, err = f.router.Execute(ctx, request(regularID, "name", "*Boss*"))
	require.NoError(t, err)
	assert.Equal(t, "✅ Your title is now: \\*Boss\\*\n", reply.Text)
}

func TestChart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		f.ledger.RecordMessage(ctx, chatID, regularID)
	}

	reply, err := f.router.Execute(ctx, request(regularID, "chart"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), reply.Photo)
	assert.Equal(t, "Messages today: 4\nMessages this week: 4", reply.Caption)
	assert.Equal(t, []int{0, 4}, f.renderer.got.Points)
	assert.Equal(t, []string{"02.03", "03.03"}, f.renderer.got.Labels, "dates follow the UTC+3 calendar")
}

func TestChart_NoData(t *testing.T) {
	f := newFixture(t)

	reply, err := f.router.Execute(context.Background(), request(regularID, "chart"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "No data on your activity")
	assert.Nil(t, reply.Photo)
}

func TestSnapshotAndWeekly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		f.ledger.RecordMessage(ctx, chatID, regularID)
	}

	reply, err := f.router.Execute(ctx, request(regularID, "snapshot"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🚫")

	reply, err = f.router.Execute(ctx, request(privID, "snapshot"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "snapshot done")

	reply, err = f.router.Execute(ctx, request(privID, "weekly"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "decay done")

	rec, ok := f.ledger.Record(chatID, regularID)
	require.True(t, ok)
	assert.Equal(t, []int{30}, rec.History)
	assert.Equal(t, 24, rec.Score)
	assert.Equal(t, 24, rec.BaseScore)

	_, ok = f.ledger.LastDailyRun()
	assert.False(t, ok, "manual triggers never touch the daily marker")
}

func TestMyID(t *testing.T) {
	f := newFixture(t)

	reply, err := f.router.Execute(context.Background(), request(regularID, "myid"))
	require.NoError(t, err)
	assert.Equal(t, "**Your user_id**  ›  `2`\n", reply.Text)
}
