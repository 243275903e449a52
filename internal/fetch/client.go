package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/massalia/crawler/internal/cache"
	"github.com/massalia/crawler/internal/util"
	"github.com/massalia/crawler/internal/worker"
)

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// Options configures the fetch client
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	RetryCount    int
	RetryDelay    time.Duration
	BackoffFactor float64
	MaxBodyBytes  int64
	CacheTTL      time.Duration
	CheckRobots   bool
	HTTPProxy     string
	HTTPSProxy    string
}

// DefaultOptions returns the defaults used by the crawl command
func DefaultOptions() Options {
	return Options{
		Timeout:       30 * time.Second,
		UserAgent:     "MassaliaEventsCrawler/1.0 (+https://github.com/massalia/crawler)",
		RetryCount:    3,
		RetryDelay:    time.Second,
		BackoffFactor: 2.0,
		MaxBodyBytes:  4 << 20,
		CacheTTL:      time.Hour,
		CheckRobots:   true,
	}
}

// Client fetches listing and detail pages. It combines the response
// cache, the per-source rate limiter, robots.txt compliance and bounded
// retry into one uniform Fetch call.
type Client struct {
	httpClient *http.Client
	opts       Options
	cache      cache.Cache
	limiter    *worker.Limiter
	robots     *util.RobotsChecker

	mu            sync.Mutex
	robotsApplied map[string]bool
}

// NewClient creates a fetch client. The cache may be nil to disable
// caching; the limiter is required.
func NewClient(opts Options, responseCache cache.Cache, limiter *worker.Limiter) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		opts:          opts,
		cache:         responseCache,
		limiter:       limiter,
		robotsApplied: make(map[string]bool),
	}

	if opts.CheckRobots {
		c.robots = util.NewRobotsChecker(opts.UserAgent, opts.Timeout)
	}

	return c
}

// Fetch retrieves a URL, consulting the cache first and pacing physical
// network calls through the rate limiter. 4xx responses are terminal;
// 5xx and transport failures are retried with multiplicative backoff.
// The returned result is never nil.
func (c *Client) Fetch(ctx context.Context, rawURL string, sourceKey string) *Result {
	if c.cache != nil {
		if cached, found := c.cacheGet(rawURL); found {
			cached.FromCache = true
			return cached
		}
	}

	key := sourceKey
	if key == "" {
		key = hostOf(rawURL)
	}

	if c.robots != nil {
		allowed, crawlDelay := c.robots.CanFetch(ctx, rawURL)
		if !allowed {
			return &Result{URL: rawURL, Error: "blocked by robots.txt"}
		}
		c.applyCrawlDelay(key, crawlDelay)
	}

	var last *Result
	delay := c.opts.RetryDelay
	for attempt := 0; attempt <= c.opts.RetryCount; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(delay)
			if c.opts.BackoffFactor > 1 {
				delay = time.Duration(float64(delay) * c.opts.BackoffFactor)
			}
		}

		if err := c.limiter.Wait(ctx, key); err != nil {
			return &Result{URL: rawURL, Error: fmt.Sprintf("rate limiter: %v", err)}
		}

		last = c.doRequest(ctx, rawURL)

		if last.Success() {
			c.cacheSet(rawURL, last)
			return last
		}

		// Client errors are not transient, do not retry
		if last.StatusCode >= 400 && last.StatusCode < 500 {
			return last
		}
	}

	return last
}

// doRequest issues one HTTP GET and classifies the outcome
func (c *Client) doRequest(ctx context.Context, rawURL string) *Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Result{URL: rawURL, Error: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Result{
			URL:     rawURL,
			Elapsed: time.Since(start),
			Error:   fmt.Sprintf("request failed: %v", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return &Result{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Elapsed:    time.Since(start),
			Error:      fmt.Sprintf("read body: %v", err),
		}
	}

	headers := make(map[string]string)
	for _, key := range []string{"Content-Type", "Last-Modified", "ETag"} {
		if val := resp.Header.Get(key); val != "" {
			headers[key] = val
		}
	}

	return &Result{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Headers:    headers,
		Elapsed:    time.Since(start),
	}
}

// applyCrawlDelay honors a robots.txt crawl-delay once per source key
func (c *Client) applyCrawlDelay(key string, crawlDelay time.Duration) {
	if crawlDelay <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.robotsApplied[key] {
		return
	}
	c.robotsApplied[key] = true
	c.limiter.SetDelay(key, crawlDelay)
}

func (c *Client) cacheGet(rawURL string) (*Result, bool) {
	key := cache.Key(rawURL)
	data, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.cache.Delete(key)
		return nil, false
	}

	return &result, true
}

func (c *Client) cacheSet(rawURL string, result *Result) {
	if c.cache == nil || !result.Success() {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.cache.Set(cache.Key(rawURL), data, c.opts.CacheTTL)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
