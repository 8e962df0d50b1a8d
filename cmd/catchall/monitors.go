package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/catchall"
)

func monitorsCMD() *cobra.Command {
	root := &cobra.Command{
		Use:   "monitors",
		Short: "Manage recurring monitors",
	}
	root.AddCommand(
		monitorsListCMD(),
		monitorsCreateCMD(),
		monitorsPullCMD(),
		monitorsEnableCMD(),
		monitorsDisableCMD(),
		monitorsUpdateWebhookCMD(),
	)
	return root
}

func monitorsListCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all monitors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			monitors, err := client.ListMonitors(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(monitors)
		},
	}
}

func webhookFromFlags(url, method string) *catchall.WebhookConfig {
	if url == "" {
		return nil
	}
	return &catchall.WebhookConfig{URL: url, Method: method}
}

func monitorsCreateCMD() *cobra.Command {
	var schedule, webhookURL, webhookMethod string
	cmd := &cobra.Command{
		Use:   "create <reference-job-id>",
		Short: "Create a monitor from a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			monitor, err := client.CreateMonitor(cmd.Context(), catchall.CreateMonitorRequest{
				ReferenceJobID: args[0],
				Schedule:       schedule,
				Webhook:        webhookFromFlags(webhookURL, webhookMethod),
			})
			if err != nil {
				return err
			}
			return printJSON(monitor)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression or free text schedule")
	cmd.Flags().StringVar(&webhookURL, "webhook-url", "", "webhook delivery URL")
	cmd.Flags().StringVar(&webhookMethod, "webhook-method", "POST", "webhook HTTP method")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

func monitorsPullCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <monitor-id>",
		Short: "Get the latest results of a monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			page, err := client.PullMonitor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
}

func monitorsEnableCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <monitor-id>",
		Short: "Enable a monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			if err := client.EnableMonitor(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Monitor %s enabled.\n", args[0])
			return nil
		},
	}
}

func monitorsDisableCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <monitor-id>",
		Short: "Disable a monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			if err := client.DisableMonitor(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Monitor %s disabled.\n", args[0])
			return nil
		},
	}
}

func monitorsUpdateWebhookCMD() *cobra.Command {
	var webhookURL, webhookMethod string
	cmd := &cobra.Command{
		Use:   "update-webhook <monitor-id>",
		Short: "Replace a monitor's webhook configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			monitor, err := client.UpdateMonitorWebhook(cmd.Context(), args[0], catchall.WebhookConfig{
				URL:    webhookURL,
				Method: webhookMethod,
			})
			if err != nil {
				return err
			}
			return printJSON(monitor)
		},
	}
	cmd.Flags().StringVar(&webhookURL, "webhook-url", "", "webhook delivery URL")
	cmd.Flags().StringVar(&webhookMethod, "webhook-method", "POST", "webhook HTTP method")
	_ = cmd.MarkFlagRequired("webhook-url")
	return cmd
}
