package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/internal/chat"
	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/internal/session"
)

func chatCMD() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask follow-up questions about saved reports",
		Long: "Answers questions grounded in the reports saved by deepsearch, risk and the " +
			"webhook receiver. Without a question argument it starts an interactive session.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			llm, err := newCompleter(cfg)
			if err != nil {
				return err
			}
			store, err := session.NewStore(session.Config{
				Backend:  cfg.Session.Backend,
				TTL:      cfg.Session.TTL,
				Addr:     cfg.Session.Redis.Addr(),
				Password: cfg.Session.Redis.Password,
				DB:       cfg.Session.Redis.DB,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			c := chat.New(llm, store, report.NewStore(cfg.Reports.Dir))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			if len(args) == 1 {
				answer, err := c.Ask(cmd.Context(), sessionID, args[0])
				if err != nil {
					return err
				}
				fmt.Println(answer)
				return nil
			}

			fmt.Println("Chatting about saved reports. Empty line to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					return nil
				}
				answer, err := c.Ask(cmd.Context(), sessionID, question)
				if err != nil {
					return err
				}
				fmt.Println(answer)
				fmt.Println()
			}
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to resume (default: a fresh session)")
	return cmd
}
