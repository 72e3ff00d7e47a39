package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Submission is one link post to a subreddit.
type Submission struct {
	Subreddit string
	Title     string
	URL       string
	NSFW      bool
	Spoiler   bool
}

// Client submits posts to Reddit. The HTTP implementation talks to the OAuth
// API; the log client stands in during development when no token is set.
type Client interface {
	Submit(ctx context.Context, sub Submission) error
}

type httpClient struct {
	baseURL   string
	token     string
	userAgent string
	http      *retryablehttp.Client
}

func NewHTTPClient(baseURL, token, userAgent string) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &httpClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: userAgent,
		http:      rc,
	}
}

func (c *httpClient) Submit(ctx context.Context, sub Submission) error {
	form := url.Values{
		"sr":       {sub.Subreddit},
		"kind":     {"link"},
		"title":    {sub.Title},
		"url":      {sub.URL},
		"nsfw":     {strconv.FormatBool(sub.NSFW)},
		"spoiler":  {strconv.FormatBool(sub.Spoiler)},
		"api_type": {"json"},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("reddit rejected submission (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// api_type=json responses carry errors inside a 200 body
	var parsed struct {
		JSON struct {
			Errors [][]any `json:"errors"`
		} `json:"json"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && len(parsed.JSON.Errors) > 0 {
		return fmt.Errorf("reddit rejected submission: %v", parsed.JSON.Errors[0])
	}

	return nil
}

type logClient struct{}

// NewLogClient returns a client that only logs submissions. Used in
// development when no Reddit token is configured.
func NewLogClient() Client {
	return logClient{}
}

func (logClient) Submit(ctx context.Context, sub Submission) error {
	slog.Info("reddit submit (log mode)",
		"subreddit", sub.Subreddit,
		"title", sub.Title,
		"url", sub.URL,
		"nsfw", sub.NSFW,
		"spoiler", sub.Spoiler,
	)
	return nil
}
