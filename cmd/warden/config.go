package main

import (
	"fmt"

	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/service/ui"
	"github.com/sandevgo/warden/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg, err := config.ParseAppConfig()
		if err != nil {
			return fmt.Errorf("app config: %w", err)
		}
		tgCfg, err := config.ParseTelegramConfig()
		if err != nil {
			return fmt.Errorf("telegram config: %w", err)
		}

		for _, section := range []struct {
			title string
			cfg   any
		}{
			{"APP", appCfg},
			{"TELEGRAM", tgCfg},
		} {
			out, err := env.MarshalEnv(section.cfg, !showSecrets)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.TitleStyle.Render(section.title))
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the bot token unmasked")
	rootCmd.AddCommand(configCmd)
}
