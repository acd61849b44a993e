package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/warden/internal/core"
)

type PromoteCommand struct {
	admin     core.Administration
	formatter *ResponseFormatter
}

func NewPromoteCommand(admin core.Administration) *PromoteCommand {
	return &PromoteCommand{admin: admin, formatter: NewResponseFormatter()}
}

func (c *PromoteCommand) Name() string {
	return "promote"
}

func (c *PromoteCommand) Description() string {
	return "Make a member an administrator without rights"
}

func (c *PromoteCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	target, err := c.admin.Promote(ctx, req)
	if err != nil {
		return nil, err
	}
	return core.TextReply(c.formatter.Success(
		fmt.Sprintf("User %s was made an administrator without rights.", c.formatter.Plain(target.Display())),
	)), nil
}

type DemoteCommand struct {
	admin     core.Administration
	formatter *ResponseFormatter
}

func NewDemoteCommand(admin core.Administration) *DemoteCommand {
	return &DemoteCommand{admin: admin, formatter: NewResponseFormatter()}
}

func (c *DemoteCommand) Name() string {
	return "demote"
}

func (c *DemoteCommand) Description() string {
	return "Revoke a member's administrator status"
}

func (c *DemoteCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	target, err := c.admin.Demote(ctx, req)
	if err != nil {
		return nil, err
	}
	return core.TextReply(c.formatter.Success(
		fmt.Sprintf("User %s is no longer an administrator.", c.formatter.Plain(target.Display())),
	)), nil
}

type NameCommand struct {
	admin     core.Administration
	formatter *ResponseFormatter
}

func NewNameCommand(admin core.Administration) *NameCommand {
	return &NameCommand{admin: admin, formatter: NewResponseFormatter()}
}

func (c *NameCommand) Name() string {
	return "name"
}

func (c *NameCommand) Description() string {
	return "Set your administrator title (once)"
}

func (c *NameCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	title, err := c.admin.SetTitle(ctx, req)
	if err != nil {
		return nil, err
	}
	return core.TextReply(c.formatter.Success("Your title is now: " + c.formatter.Plain(title))), nil
}
