package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, req *Request) (*Reply, error)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, req *Request) (*Reply, error)
}
