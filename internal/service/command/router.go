package command

import (
	"context"
	"errors"
	"sort"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

type Router struct {
	commands  map[string]core.Command
	formatter *ResponseFormatter
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands:  make(map[string]core.Command),
		formatter: NewResponseFormatter(),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute runs the named command. Unknown commands are ignored since a
// group usually hosts more than one bot. A UserError becomes the reply;
// any other error is returned for the operator.
func (c *Router) Execute(ctx context.Context, req *core.Request) (*core.Reply, error) {
	cmd, ok := c.commands[req.Command]
	if !ok {
		return nil, nil
	}

	logger := log.FromCtx(ctx).With().
		Str("command", req.Command).
		Int64("chat", req.ChatID).
		Int64("user", req.Sender.ID).
		Logger()
	ctx = logger.WithContext(ctx)

	reply, err := cmd.Execute(ctx, req)
	if err != nil {
		var uerr *core.UserError
		if errors.As(err, &uerr) {
			logger.Info().Str("kind", uerr.Kind.String()).Err(err).Msg("command refused")
			return core.TextReply(c.formatter.Error(uerr)), nil
		}
		return nil, err
	}

	logger.Debug().Msg("command done")
	return reply, nil
}

// ListCommands returns the commands sorted by name.
func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
