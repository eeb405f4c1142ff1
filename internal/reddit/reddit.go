// Package reddit is a minimal Reddit API client: OAuth2 password grant,
// keyword search, self-post submission and link flair handling. Only the
// endpoints the bot needs.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://oauth.reddit.com"
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	publicBaseURL   = "https://www.reddit.com"
)

// Credentials holds the script-app OAuth credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Client talks to the Reddit API. Not safe for concurrent use; the bot is
// a single sequential run.
type Client struct {
	// BaseURL and TokenURL are overridable for tests.
	BaseURL  string
	TokenURL string

	creds      Credentials
	httpClient *http.Client

	token       string
	tokenExpiry time.Time
}

// SearchPost is one result from the search endpoint.
type SearchPost struct {
	Title     string
	SelfText  string
	Permalink string
	Subreddit string
}

// FlairTemplate is one entry of a subreddit's link flair list.
type FlairTemplate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func NewClient(creds Credentials, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		TokenURL:   defaultTokenURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PermalinkURL turns a permalink path into a canonical absolute URL.
func PermalinkURL(permalink string) string {
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return publicBaseURL + permalink
}

// ensureToken fetches (or refreshes) the OAuth token via the password
// grant. Tokens are good for an hour, far longer than one run.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.creds.Username)
	form.Set("password", c.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access_token")
	}

	c.token = tok.AccessToken
	// Refresh a minute early.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, form url.Values) (*http.Response, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.creds.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		closeBody(resp.Body)
		return nil, fmt.Errorf("reddit API %s returned status %d", path, resp.StatusCode)
	}
	return resp, nil
}

// Search runs a keyword search across Reddit, newest first.
func (c *Client) Search(ctx context.Context, query, timeFilter string, limit int) ([]SearchPost, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "new")
	q.Set("t", timeFilter)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("raw_json", "1")

	resp, err := c.do(ctx, http.MethodGet, "/search", q, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string `json:"title"`
					SelfText  string `json:"selftext"`
					Permalink string `json:"permalink"`
					Subreddit string `json:"subreddit"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	posts := make([]SearchPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, SearchPost{
			Title:     child.Data.Title,
			SelfText:  child.Data.SelfText,
			Permalink: child.Data.Permalink,
			Subreddit: child.Data.Subreddit,
		})
	}
	return posts, nil
}

// SubmitSelfPost creates a self-text post and returns its fullname
// (t3_xxx), which flair selection needs.
func (c *Client) SubmitSelfPost(ctx context.Context, subreddit, title, body string) (string, error) {
	form := url.Values{}
	form.Set("sr", subreddit)
	form.Set("kind", "self")
	form.Set("title", title)
	form.Set("text", body)
	form.Set("api_type", "json")
	form.Set("resubmit", "true")

	resp, err := c.do(ctx, http.MethodPost, "/api/submit", nil, form)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	var result struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				Name string `json:"name"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if len(result.JSON.Errors) > 0 {
		return "", fmt.Errorf("submit rejected: %v", result.JSON.Errors[0])
	}
	if result.JSON.Data.Name == "" {
		return "", fmt.Errorf("submit response missing post name")
	}
	return result.JSON.Data.Name, nil
}

// LinkFlairTemplates lists the flair templates available on a subreddit.
func (c *Client) LinkFlairTemplates(ctx context.Context, subreddit string) ([]FlairTemplate, error) {
	resp, err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/api/link_flair_v2", nil, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	var templates []FlairTemplate
	if err := json.NewDecoder(resp.Body).Decode(&templates); err != nil {
		return nil, fmt.Errorf("decode flair templates: %w", err)
	}
	return templates, nil
}

// SelectFlair attaches a flair template to an existing post.
func (c *Client) SelectFlair(ctx context.Context, subreddit, fullname, templateID string) error {
	form := url.Values{}
	form.Set("link", fullname)
	form.Set("flair_template_id", templateID)
	form.Set("api_type", "json")

	resp, err := c.do(ctx, http.MethodPost, "/r/"+subreddit+"/api/selectflair", nil, form)
	if err != nil {
		return err
	}
	closeBody(resp.Body)
	return nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Printf("Warning: failed to close response body: %v", err)
	}
}
