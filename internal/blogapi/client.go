// Package blogapi is the client for the blog backend's read-only REST endpoints.
package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/httpclient"
	"github.com/newsportal/reader/internal/logging"
)

// Logical endpoint names, used in errors, logs and metrics.
const (
	EndpointListPosts = "list_posts"
	EndpointGetPost   = "get_post"
	EndpointListByTag = "list_posts_by_tag"
	EndpointListTags  = "list_tags"
	EndpointPing      = "ping"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 8 << 20

var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "blogapi.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "blogapi", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize blogapi file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "blogapi")
		closeLogger = func() error { return nil }
	}
}

// MetricsRecorder receives one observation per API call.
type MetricsRecorder interface {
	RecordRequest(endpoint, outcome string, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 disables pacing
	Burst     int
	Transport http.RoundTripper // optional, replaces the network transport
	Metrics   MetricsRecorder   // optional
}

// ConfigFromSettings derives a client config from application settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		BaseURL:   settings.API.BaseURL,
		Timeout:   settings.API.Timeout,
		UserAgent: settings.API.UserAgent,
		RateLimit: settings.API.RateLimit,
		Burst:     settings.API.Burst,
	}
}

// Client fetches posts and tags. Every call is a single GET attempt.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *httpclient.Client
	limiter *rate.Limiter
	metrics MetricsRecorder
}

// NewClient creates a client for the API rooted at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.Newf("blog API base URL is required").
			Category(errors.CategoryConfiguration).
			Component("blogapi").
			Build()
	}
	if u, err := url.Parse(baseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Newf("blog API base URL %q must be an absolute http(s) URL", baseURL).
			Category(errors.CategoryConfiguration).
			Component("blogapi").
			Build()
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		timeout: cfg.Timeout,
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: cfg.Timeout,
			UserAgent:      cfg.UserAgent,
			Transport:      cfg.Transport,
		}),
		metrics: cfg.Metrics,
	}

	if cfg.RateLimit > 0 {
		burst := max(cfg.Burst, 1)
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger.Info("blog API client initialized",
		"base_url", baseURL,
		"timeout", cfg.Timeout,
		"rate_limit", cfg.RateLimit)

	return client, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.http.Close()
}

// CloseLogger flushes the package's file logger.
func CloseLogger() error {
	return closeLogger()
}

// ListPosts fetches one page of the post list. Pages start at 1.
func (c *Client) ListPosts(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		return nil, invalidInput(EndpointListPosts, "page must be at least 1, got %d", page)
	}
	return c.fetchPage(ctx, c.newCall(EndpointListPosts, fmt.Sprintf("%s/posts/?page=%d", c.baseURL, page)))
}

// ListPostsByTag fetches posts carrying the tag. The first page omits the page parameter.
func (c *Client) ListPostsByTag(ctx context.Context, tag string, page int) (*Page, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, invalidInput(EndpointListByTag, "tag slug is required")
	}
	if page < 1 {
		return nil, invalidInput(EndpointListByTag, "page must be at least 1, got %d", page)
	}

	target := c.baseURL + "/posts/?tags__slug=" + url.QueryEscape(tag)
	if page > 1 {
		target += "&page=" + strconv.Itoa(page)
	}
	return c.fetchPage(ctx, c.newCall(EndpointListByTag, target))
}

// GetPost fetches a single post. A 404, or a success with an empty or null body,
// yields a KindNotFound FetchError.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, invalidInput(EndpointGetPost, "post slug is required")
	}

	call := c.newCall(EndpointGetPost, c.baseURL+"/posts/"+url.PathEscape(slug)+"/")
	body, status, err := c.get(ctx, call)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	switch {
	case status == http.StatusNotFound:
		return nil, c.fail(call, &FetchError{Kind: KindNotFound, Status: status})
	case status < 200 || status > 299:
		return nil, c.fail(call, &FetchError{Kind: KindHTTP, Status: status})
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, c.fail(call, &FetchError{Kind: KindNotFound, Status: status})
	}

	var post Post
	if err := json.Unmarshal(trimmed, &post); err != nil {
		return nil, c.fail(call, &FetchError{Kind: KindParse, Err: err})
	}
	// An object without a slug, such as {}, does not identify a post.
	if strings.TrimSpace(post.Slug) == "" {
		return nil, c.fail(call, &FetchError{Kind: KindNotFound, Status: status})
	}

	c.observe(call, "success")
	return &post, nil
}

// ListTags fetches the tag index. Both a bare array and a paginated object are accepted.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	call := c.newCall(EndpointListTags, c.baseURL+"/tags/")
	body, status, err := c.get(ctx, call)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, c.fail(call, &FetchError{Kind: KindHTTP, Status: status})
	}

	trimmed := bytes.TrimSpace(body)
	var tags []Tag
	var decodeErr error
	if len(trimmed) > 0 && trimmed[0] == '[' {
		decodeErr = json.Unmarshal(trimmed, &tags)
	} else {
		var wrapped tagPageResponse
		decodeErr = json.Unmarshal(trimmed, &wrapped)
		tags = wrapped.Results
	}
	if decodeErr != nil {
		return nil, c.fail(call, &FetchError{Kind: KindParse, Err: decodeErr})
	}
	if tags == nil {
		tags = []Tag{}
	}

	c.observe(call, "success")
	return tags, nil
}

// Ping requests the first page of posts and reports the HTTP status.
// An error is returned only when no response arrived.
func (c *Client) Ping(ctx context.Context) (int, error) {
	call := c.newCall(EndpointPing, c.baseURL+"/posts/?page=1")
	_, status, err := c.get(ctx, call)
	if err != nil {
		return 0, err
	}
	if status >= 200 && status <= 299 {
		c.observe(call, "success")
	} else {
		c.observe(call, KindHTTP.String())
	}
	return status, nil
}

// apiCall tracks one logical API request for logging and metrics.
type apiCall struct {
	endpoint string
	target   string
	start    time.Time
}

func (c *Client) newCall(endpoint, target string) *apiCall {
	return &apiCall{endpoint: endpoint, target: target, start: time.Now()}
}

func (c *Client) fetchPage(ctx context.Context, call *apiCall) (*Page, error) {
	body, status, err := c.get(ctx, call)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, c.fail(call, &FetchError{Kind: KindHTTP, Status: status})
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.fail(call, &FetchError{Kind: KindParse, Err: err})
	}

	page := &Page{
		Posts:   resp.Results,
		HasMore: resp.Next != nil && *resp.Next != "",
	}
	if page.Posts == nil {
		page.Posts = []Post{}
	}

	c.observe(call, "success")
	logger.Debug("fetched page", "endpoint", call.endpoint, "posts", len(page.Posts), "has_more", page.HasMore)
	return page, nil
}

// get performs the request and reads the body. Only transport failures are
// returned as errors, status handling is left to the caller.
func (c *Client) get(ctx context.Context, call *apiCall) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, c.fail(call, &FetchError{Kind: KindNetwork, Err: err})
		}
	}

	resp, err := c.http.Get(ctx, call.target, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return nil, 0, c.fail(call, &FetchError{Kind: KindNetwork, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, c.fail(call, &FetchError{Kind: KindNetwork, Err: err})
	}

	logger.Debug("API request completed",
		"endpoint", call.endpoint,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(call.start).Milliseconds())

	return body, resp.StatusCode, nil
}

// fail logs and records a failed call and returns it as an enhanced error.
func (c *Client) fail(call *apiCall, fe *FetchError) error {
	fe.Endpoint = call.endpoint
	c.observe(call, fe.Kind.String())

	level := slog.LevelWarn
	if fe.Kind == KindNotFound {
		level = slog.LevelInfo
	}
	logger.Log(context.Background(), level, "API request failed",
		"endpoint", call.endpoint,
		"kind", fe.Kind.String(),
		"status", fe.Status,
		"error", fe.Error())

	return fe.build(call.target, c.timeout, time.Since(call.start))
}

func (c *Client) observe(call *apiCall, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordRequest(call.endpoint, outcome, time.Since(call.start))
	}
}

func invalidInput(endpoint, format string, args ...any) error {
	return errors.New(fmt.Errorf("%s: %w: %s", endpoint, ErrInvalidInput, fmt.Sprintf(format, args...))).
		Component("blogapi").
		Category(errors.CategoryValidation).
		Build()
}
