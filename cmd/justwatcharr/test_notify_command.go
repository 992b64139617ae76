package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"justwatcharr/internal/logging"
	"justwatcharr/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Discord.BotToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Discord is not configured; nothing to send")
				return nil
			}

			svc := notifications.NewService(cmd.Context(), cfg, logging.NewNop())
			if err := svc.Test(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
