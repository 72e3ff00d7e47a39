package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/postpilot/postpilot/internal/gallery"
)

// Client is the HTTP implementation of the gallery engine's API boundary.
// Page fetches retry on transient failures; the repost mutation is never
// retried automatically, since a retry after an ambiguous failure could
// double-post.
type Client struct {
	baseURL string
	token   string
	fetch   *retryablehttp.Client
	submit  *retryablehttp.Client
}

var _ gallery.API = (*Client)(nil)

func New(baseURL, token string) *Client {
	fetch := retryablehttp.NewClient()
	fetch.RetryMax = 3
	fetch.Logger = nil

	submit := retryablehttp.NewClient()
	submit.RetryMax = 0
	submit.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		fetch:   fetch,
		submit:  submit,
	}
}

// wireAsset decodes timestamps as strings so one malformed value from the
// server degrades to "never reposted" instead of failing the whole page.
type wireAsset struct {
	ID             int64  `json:"id"`
	Filename       string `json:"filename"`
	MimeType       string `json:"mimeType"`
	Bytes          int64  `json:"bytes"`
	Watermarked    bool   `json:"isWatermarked"`
	CreatedAt      string `json:"createdAt"`
	LastRepostedAt string `json:"lastRepostedAt,omitempty"`
}

type wirePage struct {
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalItems int         `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
	HasMore    bool        `json:"hasMore"`
	Items      []wireAsset `json:"items"`
}

func (wa wireAsset) toAsset() gallery.Asset {
	a := gallery.Asset{
		ID:          wa.ID,
		Filename:    wa.Filename,
		MimeType:    wa.MimeType,
		Bytes:       wa.Bytes,
		Watermarked: wa.Watermarked,
	}
	if t, err := dateparse.ParseAny(wa.CreatedAt); err == nil {
		a.CreatedAt = t
	}
	if wa.LastRepostedAt != "" {
		if t, err := dateparse.ParseAny(wa.LastRepostedAt); err == nil {
			a.LastRepostedAt = &t
		}
	}
	return a
}

// FetchPage implements gallery.Fetcher.
func (c *Client) FetchPage(ctx context.Context, req gallery.PageRequest) (*gallery.PageResponse, error) {
	q := url.Values{
		"page":     {strconv.Itoa(req.Page)},
		"pageSize": {strconv.Itoa(req.PageSize)},
	}
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/gallery?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.fetch.Do(httpReq)
	if err != nil {
		return nil, &gallery.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp)
	}

	var page wirePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &gallery.NetworkError{Err: fmt.Errorf("failed to decode page: %w", err)}
	}

	items := make([]gallery.Asset, 0, len(page.Items))
	for _, wa := range page.Items {
		items = append(items, wa.toAsset())
	}

	return &gallery.PageResponse{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore,
		Items:      items,
	}, nil
}

// SubmitRepost implements gallery.Reposter.
func (c *Client) SubmitRepost(ctx context.Context, req gallery.RepostRequest) (*gallery.RepostResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode repost request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reddit/quick-repost", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build repost request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.submit.Do(httpReq)
	if err != nil {
		return nil, &gallery.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp)
	}

	var result struct {
		RepostedAt string `json:"repostedAt,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// the repost went through; the engine falls back to local time
		return &gallery.RepostResult{}, nil
	}

	out := &gallery.RepostResult{}
	if result.RepostedAt != "" {
		if t, err := dateparse.ParseAny(result.RepostedAt); err == nil {
			out.RepostedAt = &t
		}
	}
	return out, nil
}

func (c *Client) authorize(req *retryablehttp.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func serverError(resp *http.Response) error {
	serr := &gallery.ServerError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		serr.Message = body.Error
	}
	return serr
}

// Timeout configures the underlying HTTP clients' per-request timeout.
func (c *Client) Timeout(d time.Duration) {
	c.fetch.HTTPClient.Timeout = d
	c.submit.HTTPClient.Timeout = d
}
