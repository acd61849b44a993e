package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

const (
	diodeSize     = 1000
	diodeInterval = 5 * time.Millisecond
)

// NewContextWithLogger installs the process logger and returns a context carrying it.
// The returned func flushes the diode buffer and must be called before exit.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	// Non-blocking ring buffer in front of stdout
	wr := diode.NewWriter(os.Stdout, diodeSize, diodeInterval, func(missed int) {
		fmt.Printf("Logger Dropped %d messages\n", missed)
	})

	ctx = NewContextWithWriter(ctx, wr, debug)
	return ctx, func() {
		wr.Close()
	}
}

// NewContextWithWriter builds a console logger over w. Tests use it with a buffer.
func NewContextWithWriter(ctx context.Context, w io.Writer, debug bool) context.Context {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    w != os.Stdout,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger.WithContext(ctx)
}

// WithComponent returns a child context whose logger tags every event with component.
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromCtx(ctx).With().Str("component", component).Logger()
	return logger.WithContext(ctx)
}

func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}
