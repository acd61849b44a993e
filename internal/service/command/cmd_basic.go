package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/warden/internal/core"
)

type StartCommand struct {
	formatter *ResponseFormatter
}

func NewStartCommand() *StartCommand {
	return &StartCommand{formatter: NewResponseFormatter()}
}

func (c *StartCommand) Name() string {
	return "start"
}

func (c *StartCommand) Description() string {
	return "Greeting"
}

func (c *StartCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	return core.TextReply(c.formatter.Info("👋", "Hi! I am a bot for chat administration and activity tracking.")), nil
}

type MyIDCommand struct {
	formatter *ResponseFormatter
}

func NewMyIDCommand() *MyIDCommand {
	return &MyIDCommand{formatter: NewResponseFormatter()}
}

func (c *MyIDCommand) Name() string {
	return "myid"
}

func (c *MyIDCommand) Description() string {
	return "Show your user id"
}

func (c *MyIDCommand) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	return core.TextReply(c.formatter.Label("Your user_id", fmt.Sprint(req.Sender.ID))), nil
}
