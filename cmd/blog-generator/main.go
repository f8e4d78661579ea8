// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the blog-generator CLI. Each
// subcommand builds its components from the resolved configuration:
// generate runs the pipeline once, serve exposes it over HTTP, and news,
// notify, and health reach the individual services directly.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/config"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/generate"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/httputil"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/news"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/notify"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/pipeline"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/secrets"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state resolved in PersistentPreRunE.
var (
	cfg    types.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the blog-generator CLI.
var rootCmd = &cobra.Command{
	Use:   "blog-generator",
	Short: "Generate blog posts from a topic and recent news",
	Long: `blog-generator writes a blog post for a topic in three language-model
calls (title, meta description, body), optionally grounded in recent news from
the Currents API, and optionally announces the result on Telegram.

Run it once with generate, or start the HTTP API with serve. Credentials come
from the environment, a .env file, the config file, or the .secrets/ directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bootLog := newLogger(zerolog.InfoLevel)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, bootLog)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			bootLog.Debug().Strs("keys", keys).Msg("loaded secrets")
		}

		cfg, err = config.Load(viper.GetViper(), s)
		if err != nil {
			return err
		}

		level, _ := zerolog.ParseLevel(cfg.Log.Level)
		logger = newLogger(level)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./blog-generator.yaml or ~/.config/blog-generator/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded into the environment")
}

func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	// A missing .env is normal outside development.
	_ = godotenv.Load(envFile)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("blog-generator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "blog-generator"))
		}
	}

	if err := config.Bind(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "reading config file:", err)
		}
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// components holds the clients built from cfg for one command invocation.
type components struct {
	news      *news.Client
	generator *generate.Generator
	notifier  *notify.Notifier
	pipeline  *pipeline.Pipeline
	closers   []io.Closer
}

func buildComponents(ctx context.Context) (*components, error) {
	c := &components{
		news:     news.NewClient(cfg.News, nil, logger),
		notifier: notify.New(cfg.Notify, httputil.NewClient(cfg.HTTP), logger),
	}

	backend, err := generate.NewBackend(ctx, cfg.AI, nil)
	if err != nil {
		return nil, err
	}
	if closer, ok := backend.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	c.generator = generate.New(backend, cfg.Generation, logger)
	if !c.generator.Configured() {
		logger.Warn().Str("provider", string(cfg.AI.Provider)).Msg("model API key is not configured")
	}

	c.pipeline = pipeline.New(c.news, c.generator, c.notifier, logger)
	return c, nil
}

func (c *components) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing client")
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
