package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/internal/webhook"
)

func webhookCMD() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Run the monitor webhook receiver",
		Long: "Serves the endpoint monitors deliver to. Each delivery is rendered to " +
			"markdown and saved to the reports directory. Also exposes /healthz and /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Webhook.Addr
			}

			srv := webhook.New(report.NewStore(cfg.Reports.Dir))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
