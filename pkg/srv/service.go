package srv

import (
	"context"

	"github.com/sandevgo/warden/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine.
// A start failure is fatal: the bot is useless with half of its services.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then stops services in reverse
// registration order so storage is closed after everything that writes to it.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
