// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate one blog post for a topic",
	Long: `Generate fetches recent news for the topic (unless --no-news is set),
asks the language model for a title, a meta description, and the body, and
prints the post. With --notify the post is also sent to the configured
Telegram chat; a failed notification is reported but does not discard the post.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "post topic (2-100 characters)")
	generateCmd.Flags().String("language", "", "news search language (default from config)")
	generateCmd.Flags().String("style", string(types.DefaultStyle), "writing style: professional, casual, creative, or technical")
	generateCmd.Flags().Int("max-news", 0, "number of news articles used as context (default from config)")
	generateCmd.Flags().Bool("no-news", false, "generate without fetching news")
	generateCmd.Flags().Bool("notify", false, "send the post to Telegram")
	generateCmd.Flags().String("format", formatMarkdown, "output format: markdown, json, or yaml")
	generateCmd.Flags().StringP("output", "o", "", "write the post to a file instead of stdout")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" && len(args) == 1 {
		topic = args[0]
	}
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("provide a topic as an argument or with --topic")
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatMarkdown, formatJSON, formatYAML:
	default:
		return fmt.Errorf("--format must be markdown, json, or yaml, got %q", format)
	}

	req := types.NewTopicRequest(topic)
	req.Language = cfg.News.Language
	req.MaxNewsArticles = cfg.News.MaxArticles
	if v, _ := cmd.Flags().GetString("language"); v != "" {
		req.Language = v
	}
	if v, _ := cmd.Flags().GetInt("max-news"); v != 0 {
		req.MaxNewsArticles = v
	}
	style, _ := cmd.Flags().GetString("style")
	req.WritingStyle = types.WritingStyle(style)
	noNews, _ := cmd.Flags().GetBool("no-news")
	req.IncludeNews = !noNews
	req.Notify, _ = cmd.Flags().GetBool("notify")

	ctx := cmd.Context()
	c, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.pipeline.Run(ctx, req)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if format == formatMarkdown {
		_, err = fmt.Fprint(out, res.Post.Markdown())
	} else {
		err = writeFormatted(out, format, res)
	}
	if err != nil {
		return fmt.Errorf("writing post: %w", err)
	}

	logger.Info().
		Str("run_id", res.RunID).
		Str("title", res.Post.Title).
		Int("tokens_used", res.Post.TokensUsed).
		Msg("post generated")
	if req.Notify && !res.Notified {
		return fmt.Errorf("post generated but notification failed: %s", res.NotifyError)
	}
	return nil
}
