package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/recruiter-assistant/internal/services"
)

var sendCmd = &cobra.Command{
	Use:   "send <phone|chat-id> <message>",
	Short: "Send a WhatsApp message through the gateway",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd.Context(), args[0], strings.Join(args[1:], " "))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the WhatsApp gateway session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(sendCmd, statusCmd)
}

func newGateway() (services.WhatsAppGateway, func(), error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, nil, err
	}
	gateway := services.NewWahaClient(cfg.Waha.URL, cfg.Waha.Session, cfg.Waha.APIKey, cfg.Waha.Timeout, 0, log)
	return gateway, func() { _ = log.Sync() }, nil
}

func runSend(ctx context.Context, to, message string) error {
	gateway, done, err := newGateway()
	if err != nil {
		return err
	}
	defer done()

	chatID := services.FormatPhoneNumber(to)
	if err := gateway.SendText(ctx, chatID, message); err != nil {
		return err
	}
	fmt.Printf("✅ sent to %s\n", chatID)
	return nil
}

func runStatus(ctx context.Context) error {
	gateway, done, err := newGateway()
	if err != nil {
		return err
	}
	defer done()

	status, err := gateway.SessionStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("session %s: %s (connected: %t)\n", status.Name, status.Status, status.Connected())
	return nil
}
