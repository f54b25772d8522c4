/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carhire/apiserver/config"
	"github.com/carhire/apiserver/internal/mq"
	"github.com/carhire/apiserver/internal/notify"
)

// relayCmd represents the relay command
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Delivers queued emails over SMTP",
	Long: `Consumes the notification channel of the message queue and sends each
email over SMTP. Requires MQ_BACKEND and the SMTP credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg, "carhire-relay")

		sender, err := notify.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if errors.Is(err, mq.ErrDisabled) {
			return errors.New("relay needs a message queue: set MQ_BACKEND")
		}
		if err != nil {
			return fmt.Errorf("open message queue: %w", err)
		}
		defer queue.Close()

		return notify.NewRelay(queue, cfg.MQ.NotificationChannel, sender, logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
}
