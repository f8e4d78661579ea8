// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve exposes post generation, news search, and Telegram delivery over
HTTP with JSON bodies. When server.api_key is set every route except /health
requires the X-API-Key header. The server shuts down gracefully on SIGINT or
SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetString("host"); v != "" {
			cfg.Server.Host = v
		}
		if v, _ := cmd.Flags().GetInt("port"); v != 0 {
			cfg.Server.Port = v
		}

		c, err := buildComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		srv := server.New(c.pipeline, c.news, c.notifier, cfg.Server, version, logger,
			server.WithRequestDefaults(cfg.News.Language, cfg.News.MaxArticles))
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")

	rootCmd.AddCommand(serveCmd)
}
