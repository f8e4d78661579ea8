// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/httputil"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send messages through the configured Telegram bot",
}

var notifySendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a message to the configured chat",
	Long: `Send posts a message to the configured Telegram chat or channel in HTML
parse mode. The title, when given, is shown in bold above the text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		if text == "" && len(args) == 1 {
			text = args[0]
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("provide message text as an argument or with --text")
		}
		title, _ := cmd.Flags().GetString("title")

		n := notify.New(cfg.Notify, httputil.NewClient(cfg.HTTP), logger)
		if err := n.SendMessage(cmd.Context(), text, title); err != nil {
			return err
		}
		logger.Info().Msg("message sent")
		return nil
	},
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the bot can reach the configured chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := notify.New(cfg.Notify, httputil.NewClient(cfg.HTTP), logger)
		if !n.Configured() {
			return fmt.Errorf("telegram is not configured: set notify.bot_token and notify.chat_id")
		}
		if !n.TestConnection(cmd.Context()) {
			return fmt.Errorf("telegram connection failed")
		}
		fmt.Println("telegram connected")
		return nil
	},
}

func init() {
	notifySendCmd.Flags().String("text", "", "message text")
	notifySendCmd.Flags().String("title", "", "bold title shown above the text")

	notifyCmd.AddCommand(notifySendCmd, notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}
