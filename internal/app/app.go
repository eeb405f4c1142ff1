// Package app wires configuration into clients, sources, publisher and
// pipeline, and runs one pass.
package app

import (
	"context"
	"fmt"
	"time"

	"llmsecbot/internal/ai"
	"llmsecbot/internal/cache"
	"llmsecbot/internal/config"
	"llmsecbot/internal/logger"
	"llmsecbot/internal/metrics"
	"llmsecbot/internal/pipeline"
	"llmsecbot/internal/publisher"
	"llmsecbot/internal/reddit"
	"llmsecbot/internal/source"
)

const summaryCacheTTL = 1 * time.Hour

// Run executes one full bot run. Configuration errors are fatal and come
// back as errors; source and publish failures inside the run are handled
// by the pipeline's skip-and-continue policy.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Debug)

	run, err := config.LoadRun(cfg.RunConfigPath)
	if err != nil {
		return fmt.Errorf("load run config: %w", err)
	}

	redditClient := reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		Username:     cfg.RedditUsername,
		Password:     cfg.RedditPassword,
		UserAgent:    cfg.UserAgent,
	}, cfg.RequestTimeout)

	summarizer, cleanup, err := buildSummarizer(ctx, cfg, run.Prompt)
	if err != nil {
		return fmt.Errorf("build summarizer: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	sources, err := buildSources(run.Sources, redditClient, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}

	pub := publisher.New(redditClient, summarizer, run.Subreddit, run.FlairMap, run.Disclaimer)
	pipe := pipeline.New(sources, pub, run.MaxPosts)

	logger.Info("starting run",
		"sources", len(sources),
		"subreddit", run.Subreddit,
		"max_posts", run.MaxPosts,
		"ai_provider", cfg.AIProvider,
	)

	stats := pipe.Run(ctx)

	logger.Info("run complete",
		"fetched", stats.Fetched,
		"unique", stats.Unique,
		"published", stats.Published,
		"failed", stats.Failed,
	)

	if stats.Failed > 0 {
		metrics.Global.SetError(fmt.Sprintf("%d of %d publishes failed", stats.Failed, stats.Failed+stats.Published))
	}
	return nil
}

// buildSummarizer picks the configured provider and wraps it with the
// per-run summary cache. Returns a nil summarizer for provider "none".
func buildSummarizer(ctx context.Context, cfg *config.Config, prompt string) (ai.Summarizer, func(), error) {
	switch cfg.AIProvider {
	case "none":
		return nil, nil, nil
	case "gemini":
		gem, err := ai.NewGeminiSummarizer(ctx, cfg.GeminiKey, cfg.Model, prompt, cfg.MaxTokens, float32(cfg.Temperature), cfg.AITimeout)
		if err != nil {
			return nil, nil, err
		}
		return ai.WithCache(gem, cache.New(), summaryCacheTTL), gem.Close, nil
	default:
		oa := ai.NewOpenAISummarizer(cfg.OpenAIKey, cfg.Model, prompt, cfg.MaxTokens, float32(cfg.Temperature), cfg.AITimeout)
		return ai.WithCache(oa, cache.New(), summaryCacheTTL), nil, nil
	}
}

func buildSources(configs []config.SourceConfig, redditClient *reddit.Client, timeout time.Duration) ([]source.Source, error) {
	sources := make([]source.Source, 0, len(configs))
	for _, sc := range configs {
		switch sc.Kind {
		case "feed":
			sources = append(sources, source.NewFeed(sc.Name, sc.URL, sc.URLTemplate, sc.Query, sc.UnwrapRedirect, timeout))
		case "reddit_search":
			sources = append(sources, source.NewRedditSearch(sc.Name, redditClient, sc.Query, sc.TimeFilter, sc.Limit, sc.ExcludeSubreddits))
		default:
			// LoadRun already rejects unknown kinds; keep the check anyway.
			return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
		}
	}
	return sources, nil
}
