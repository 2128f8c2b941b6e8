package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var messagesDays int

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List SPV messages for the configured CIF",
	RunE:  runMessages,
}

func init() {
	rootCmd.AddCommand(messagesCmd)
	messagesCmd.Flags().IntVar(&messagesDays, "days", 30, "How many days back to list")
}

func runMessages(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	user, err := svc.store.currentUser()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), svc.cfg.Timeout())
	defer cancel()

	resp, err := svc.api.Messages(ctx, user, messagesDays)
	if err != nil {
		return err
	}
	if !resp.Succeeded() {
		return fmt.Errorf("message list rejected: %s", resp.Error)
	}
	if len(resp.Messages) == 0 {
		fmt.Println("No messages.")
		return nil
	}
	for _, m := range resp.Messages {
		fmt.Printf("%-12s %-18s %-10s %s\n", m.ID, m.MessageType(), m.CreatedAt, m.Details)
	}
	return nil
}
