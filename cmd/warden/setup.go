package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/activity"
	"github.com/sandevgo/warden/internal/service/admin"
	"github.com/sandevgo/warden/internal/service/chart"
	"github.com/sandevgo/warden/internal/service/command"
	"github.com/sandevgo/warden/internal/service/identity"
	"github.com/sandevgo/warden/internal/service/scheduler"
	"github.com/sandevgo/warden/internal/storage"
	"github.com/sandevgo/warden/internal/transport/telegram"
	"github.com/sandevgo/warden/pkg/log"
	"github.com/sandevgo/warden/pkg/srv"
)

// state is everything loaded from the snapshot store at startup.
type state struct {
	ledger  *activity.Ledger
	handles *identity.HandleCache
	titles  *admin.UsedTitles
}

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Storage
	store, closeStore, err := storage.Open(ctx, appCfg.GetStore(), appCfg.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup("store", closeStore))

	if err := storage.Ensure(ctx, store, storage.Datasets...); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize datasets")
	}

	st, err := loadState(ctx, store, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load state")
	}

	// 3. Scheduler: replay missed days before any update is handled.
	// Start replays again if midnight passes before the cron is running.
	sched := scheduler.New(st.ledger, appCfg.Location(), appCfg.GetDailyCron())
	if n := sched.CatchUp(ctx); n > 0 {
		logger.Info().Int("cycles", n).Msg("missed daily cycles replayed")
	}
	services = append(services, sched)

	// 4. Telegram
	client, err := telegram.NewClient(ctx, tgCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram client")
	}
	platform := telegram.NewPlatform(client)

	resolver := identity.NewResolver(st.handles, platform)
	adminSvc := admin.NewService(platform, tgCfg, resolver, st.titles)

	router := command.New(command.NewCommands(tgCfg, st.ledger, adminSvc, chart.NewRenderer()))

	bot := telegram.NewBot(ctx, client, router, st.ledger, st.handles)
	services = append(services, bot)

	return services
}

func loadState(ctx context.Context, store core.SnapshotStore, cfg core.AppConfig) (*state, error) {
	st := &state{
		ledger:  activity.NewLedger(store, cfg.Location()),
		handles: identity.NewHandleCache(store),
		titles:  admin.NewUsedTitles(store),
	}

	if err := st.ledger.Load(ctx); err != nil {
		return nil, err
	}
	if err := st.handles.Load(ctx); err != nil {
		return nil, err
	}
	if err := st.titles.Load(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
