package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/service/installer"
	"github.com/sandevgo/warden/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Create the Warden configuration and data files",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		if _, err := installer.RunWizard(ctx, runtimePath); err != nil {
			return err
		}

		// Load the newly created .env file so the config can be checked right away
		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}
		if _, err := config.ParseTelegramConfig(); err != nil {
			logger.Warn().Err(err).Msg("telegram configuration is incomplete")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Installation complete! You can now run 'warden start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
