package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRun = `
subreddit: llmsecurity
max_posts: 2
flair_map:
  news: News
  research: Research
sources:
  - name: news
    kind: feed
    url_template: "https://news.example/rss/search?q=%s"
    query: "LLM security"
    unwrap_redirect: true
  - name: research
    kind: feed
    url: "https://arxiv.example/api/query"
  - name: community
    kind: reddit_search
    query: "LLM security"
    exclude_subreddits: [llmsecurity]
`

func writeRunConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadRun(t *testing.T) {
	run, err := LoadRun(writeRunConfig(t, sampleRun))
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}

	if run.Subreddit != "llmsecurity" || run.MaxPosts != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.Disclaimer == "" || run.Prompt == "" {
		t.Error("disclaimer and prompt should get defaults")
	}
	if run.FlairMap["research"] != "Research" {
		t.Errorf("flair_map = %v", run.FlairMap)
	}
	if len(run.Sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(run.Sources))
	}

	community := run.Sources[2]
	if community.TimeFilter != "day" {
		t.Errorf("time_filter default = %q, want day", community.TimeFilter)
	}
	if community.Limit != 10 {
		t.Errorf("limit default = %d, want 10", community.Limit)
	}
	if !run.Sources[0].UnwrapRedirect || run.Sources[1].UnwrapRedirect {
		t.Error("unwrap_redirect flags wrong")
	}
}

func TestLoadRun_DefaultMaxPosts(t *testing.T) {
	run, err := LoadRun(writeRunConfig(t, `
subreddit: llmsecurity
sources:
  - name: news
    kind: feed
    url: "https://news.example/rss"
`))
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if run.MaxPosts != 3 {
		t.Errorf("max_posts default = %d, want 3", run.MaxPosts)
	}
}

func TestLoadRun_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing subreddit": `
sources:
  - name: news
    kind: feed
    url: "https://news.example/rss"
`,
		"no sources": `
subreddit: llmsecurity
`,
		"unknown kind": `
subreddit: llmsecurity
sources:
  - name: news
    kind: scraper
    url: "https://news.example"
`,
		"feed without url": `
subreddit: llmsecurity
sources:
  - name: news
    kind: feed
`,
		"search without query": `
subreddit: llmsecurity
sources:
  - name: community
    kind: reddit_search
`,
	}
	for name, content := range cases {
		if _, err := LoadRun(writeRunConfig(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USERNAME", "bot")
	t.Setenv("REDDIT_PASSWORD", "pw")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AIProvider != "openai" || cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("provider/model = %q/%q", cfg.AIProvider, cfg.Model)
	}
	if cfg.MaxTokens != 150 || cfg.Temperature != 0.3 {
		t.Errorf("tokens/temperature = %d/%v", cfg.MaxTokens, cfg.Temperature)
	}
}

func TestLoad_GeminiDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("model = %q, want gemini default", cfg.Model)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDDIT_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing REDDIT_PASSWORD")
	}
}

func TestLoad_ProviderKeyRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
}
