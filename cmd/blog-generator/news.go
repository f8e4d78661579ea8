// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/news"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Query the news provider directly",
}

var newsSearchCmd = &cobra.Command{
	Use:   "search [keywords]",
	Short: "Search recent news by keywords",
	Long: `Search queries the Currents API for recent articles matching the
keywords. Results are normalized: missing titles, descriptions, and
categories carry placeholder values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNewsSearch,
}

var newsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the supported news categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := news.NewClient(cfg.News, nil, logger)
		for _, c := range client.Categories() {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	newsSearchCmd.Flags().String("keywords", "", "search keywords")
	newsSearchCmd.Flags().String("language", "", "article language (default from config)")
	newsSearchCmd.Flags().String("category", "", "restrict results to one category")
	newsSearchCmd.Flags().Int("max-results", types.DefaultNewsArticles, "maximum number of results to return (1-20)")
	newsSearchCmd.Flags().Bool("json", false, "output results as JSON")

	newsCmd.AddCommand(newsSearchCmd, newsCategoriesCmd)
	rootCmd.AddCommand(newsCmd)
}

func runNewsSearch(cmd *cobra.Command, args []string) error {
	req := types.NewNewsSearchRequest("")
	req.Language = cfg.News.Language
	req.Keywords, _ = cmd.Flags().GetString("keywords")
	if req.Keywords == "" && len(args) == 1 {
		req.Keywords = args[0]
	}
	if v, _ := cmd.Flags().GetString("language"); v != "" {
		req.Language = v
	}
	req.Category, _ = cmd.Flags().GetString("category")
	req.MaxResults, _ = cmd.Flags().GetInt("max-results")

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	client := news.NewClient(cfg.News, nil, logger)
	if !client.Configured() {
		return failure.New(failure.Unauthorized, "news API key is not configured")
	}
	articles, err := client.Search(cmd.Context(), news.Query{
		Keywords:   req.Keywords,
		Language:   req.Language,
		Category:   req.Category,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, articles)
	}
	if len(articles) == 0 {
		fmt.Fprintln(os.Stderr, "no articles found")
		return nil
	}
	for i, a := range articles {
		fmt.Printf("%d. %s\n", i+1, a.Title)
		if a.HasDescription() {
			fmt.Printf("   %s\n", a.Description)
		}
		if a.URL != "" {
			fmt.Printf("   %s\n", a.URL)
		}
		fmt.Printf("   %s [%s]\n", a.Published, strings.Join(a.Category, ", "))
	}
	return nil
}
