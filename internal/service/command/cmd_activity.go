package command

import (
	"context"
	"errors"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/chart"
)

var errNoActivity = core.WrapUserError(core.KindNoData, "No data on your activity yet. Start writing messages.", core.ErrNoData)

// ChartRenderer draws a projection as an image.
type ChartRenderer interface {
	Render(p chart.Projection) ([]byte, error)
}

type ChartCommand struct {
	ledger   core.ActivityLedger
	renderer ChartRenderer
}

func NewChartCommand(ledger core.ActivityLedger, renderer ChartRenderer) *ChartCommand {
	return &ChartCommand{ledger: ledger, renderer: renderer}
}

func (c *ChartCommand) Name() string {
	return "chart"
}

func (c *ChartCommand) Description() string {
	return "Show your activity chart"
}

func (c *ChartCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	rec, ok := c.ledger.Record(req.ChatID, req.Sender.ID)
	if !ok {
		return nil, errNoActivity
	}

	p, err := chart.Project(rec, req.Time.In(c.ledger.Location()))
	if errors.Is(err, core.ErrNoData) {
		return nil, errNoActivity
	}
	if err != nil {
		return nil, err
	}

	png, err := c.renderer.Render(p)
	if err != nil {
		return nil, err
	}
	return &core.Reply{Photo: png, Caption: p.Caption()}, nil
}

type SnapshotCommand struct {
	ledger    core.ActivityLedger
	access    core.AccessConfig
	formatter *ResponseFormatter
}

func NewSnapshotCommand(ledger core.ActivityLedger, access core.AccessConfig) *SnapshotCommand {
	return &SnapshotCommand{ledger: ledger, access: access, formatter: NewResponseFormatter()}
}

func (c *SnapshotCommand) Name() string {
	return "snapshot"
}

func (c *SnapshotCommand) Description() string {
	return "Take the daily activity snapshot now"
}

func (c *SnapshotCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	if !c.access.IsPrivileged(req.Sender.ID) {
		return nil, core.NewUserError(core.KindAuth, "You do not have access to this command!")
	}
	c.ledger.SnapshotAll(ctx, req.Time)
	return core.TextReply(c.formatter.Info("📊", "Manual daily activity snapshot done.")), nil
}

type WeeklyCommand struct {
	ledger    core.ActivityLedger
	access    core.AccessConfig
	formatter *ResponseFormatter
}

func NewWeeklyCommand(ledger core.ActivityLedger, access core.AccessConfig) *WeeklyCommand {
	return &WeeklyCommand{ledger: ledger, access: access, formatter: NewResponseFormatter()}
}

func (c *WeeklyCommand) Name() string {
	return "weekly"
}

func (c *WeeklyCommand) Description() string {
	return "Apply the weekly activity decay now"
}

func (c *WeeklyCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	if !c.access.IsPrivileged(req.Sender.ID) {
		return nil, core.NewUserError(core.KindAuth, "You do not have access to this command!")
	}
	c.ledger.DecayAll(ctx)
	return core.TextReply(c.formatter.Info("📉", "Manual weekly decay done.")), nil
}
