package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/election-tally/internal/queue"
)

func newConsumeLedgerCmd(log zerolog.Logger) *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume-ledger",
		Short: "Append vote.recorded events to the ledger audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := os.Getenv("RABBITMQ_URL")
			if url == "" {
				url = os.Getenv("AMQP_URL")
			}
			c := queue.NewLedgerConsumer(url, log)
			if logPath != "" {
				c.LogPath = logPath
			}
			err := c.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logPath, "log-file", "", "audit log path (default logs/ledger.log)")
	return cmd
}
