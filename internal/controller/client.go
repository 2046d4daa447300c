package controller

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Monitor API paths for the telemetry feeds the discovery pipeline consumes.
const (
	PathManagedSwitches = "/api/v2/monitor/switch-controller/managed-switch/status"
	PathDetectedDevices = "/api/v2/monitor/switch-controller/detected-device"
	PathDHCPLeases      = "/api/v2/monitor/system/dhcp"
	PathARPTable        = "/api/v2/monitor/network/arp"
	PathInterfaces      = "/api/v2/monitor/system/interface"
)

// Observer receives client telemetry. Implementations must be cheap and
// non-blocking; a nil observer is valid.
type Observer interface {
	UpstreamRequest(endpoint, outcome string)
	ResponseCacheHit(endpoint string)
}

// Config holds the controller connection settings.
type Config struct {
	// BaseURL is the controller root, e.g. "https://192.168.1.1".
	BaseURL string
	// Token is the bearer token for the monitor API.
	Token string
	// InsecureTLS disables certificate verification. Intended only for lab
	// deployments with self-signed controllers; unsafe for production.
	InsecureTLS bool
	// MinInterval is the shared minimum spacing between any two upstream
	// calls from this client.
	MinInterval time.Duration
	// ResponseTTL bounds how long a cached response body stays fresh.
	ResponseTTL time.Duration
	// MaxCacheEntries bounds the response cache size.
	MaxCacheEntries int
	// RetryAfter is the fixed backoff before the single 429 retry.
	RetryAfter time.Duration
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MinInterval == 0 {
		c.MinInterval = 2 * time.Second
	}
	if c.ResponseTTL == 0 {
		c.ResponseTTL = 60 * time.Second
	}
	if c.MaxCacheEntries == 0 {
		c.MaxCacheEntries = 100
	}
	if c.RetryAfter == 0 {
		c.RetryAfter = 30 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
}

// Client performs authenticated reads against one controller. All mutable
// state (rate-limiter clock, response cache, token) lives on the instance so
// independent controller targets never share a clock or cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rateLimiter
	cache      *responseCache
	retryAfter time.Duration
	observer   Observer

	mu    sync.RWMutex
	token string

	// sleep is swappable so tests do not wait out the 429 backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a controller client from config.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		log.Printf("Controller client: TLS verification disabled for %s (lab mode, unsafe for production)", cfg.BaseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter:    newRateLimiter(cfg.MinInterval),
		cache:      newResponseCache(cfg.ResponseTTL, cfg.MaxCacheEntries),
		retryAfter: cfg.RetryAfter,
		token:      cfg.Token,
		sleep:      sleepContext,
	}
}

// SetObserver attaches a metrics observer.
func (c *Client) SetObserver(obs Observer) {
	c.observer = obs
}

// SetToken replaces the bearer token. Used by config hot reload.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.cache.clear()
}

// ManagedSwitches fetches the managed-switch status feed.
func (c *Client) ManagedSwitches(ctx context.Context) ([]ManagedSwitch, error) {
	var out []ManagedSwitch
	if err := c.getResults(ctx, PathManagedSwitches, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DetectedDevices fetches the controller-detected endpoint list.
func (c *Client) DetectedDevices(ctx context.Context) ([]DetectedDevice, error) {
	var out []DetectedDevice
	if err := c.getResults(ctx, PathDetectedDevices, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DHCPLeases fetches the system DHCP lease table.
func (c *Client) DHCPLeases(ctx context.Context) ([]DHCPLease, error) {
	var out []DHCPLease
	if err := c.getResults(ctx, PathDHCPLeases, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ARPEntries fetches the system ARP table.
func (c *Client) ARPEntries(ctx context.Context) ([]ARPEntry, error) {
	var out []ARPEntry
	if err := c.getResults(ctx, PathARPTable, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RouterInterfaces fetches the system interface feed.
func (c *Client) RouterInterfaces(ctx context.Context) ([]RouterInterface, error) {
	var out []RouterInterface
	if err := c.getResults(ctx, PathInterfaces, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getResults performs a cached GET and decodes the results array into out.
func (c *Client) getResults(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode %s envelope: %w", path, err)
	}
	if len(env.Results) == 0 {
		// Missing results array; the map builders treat nil as empty.
		return nil
	}
	if err := json.Unmarshal(env.Results, out); err != nil {
		return fmt.Errorf("decode %s results: %w", path, err)
	}
	return nil
}

// get fetches one endpoint, consulting the response cache first and enforcing
// the shared inter-call interval. Never panics; all failures come back as
// *UpstreamError or a decode error.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := requestKey(path, query)
	if body, ok := c.cache.get(key); ok {
		if c.observer != nil {
			c.observer.ResponseCacheHit(path)
		}
		return body, nil
	}

	body, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, err
	}

	c.cache.put(key, body)
	return body, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	status, body, err := c.doOnce(ctx, path, query)
	if err != nil {
		c.observe(path, "unavailable")
		return nil, &UpstreamError{Kind: KindUnavailable, Endpoint: path, Detail: err.Error()}
	}

	if status == http.StatusTooManyRequests {
		log.Printf("Controller rate-limited %s, retrying once after %s", path, c.retryAfter)
		if err := c.sleep(ctx, c.retryAfter); err != nil {
			c.observe(path, "rate_limited")
			return nil, &UpstreamError{Kind: KindRateLimited, Endpoint: path, Status: status, Detail: err.Error()}
		}
		status, body, err = c.doOnce(ctx, path, query)
		if err != nil {
			c.observe(path, "unavailable")
			return nil, &UpstreamError{Kind: KindUnavailable, Endpoint: path, Detail: err.Error()}
		}
		if status == http.StatusTooManyRequests {
			c.observe(path, "rate_limited")
			return nil, &UpstreamError{Kind: KindRateLimited, Endpoint: path, Status: status, Detail: "still rate-limited after retry"}
		}
	}

	if status != http.StatusOK {
		c.observe(path, "rejected")
		log.Printf("Controller rejected %s: status %d", path, status)
		return nil, &UpstreamError{Kind: KindRejected, Endpoint: path, Status: status, Detail: truncate(string(body), 200)}
	}

	c.observe(path, "ok")
	return body, nil
}

// doOnce performs a single rate-limited request attempt.
func (c *Client) doOnce(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return 0, nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func (c *Client) observe(endpoint, outcome string) {
	if c.observer != nil {
		c.observer.UpstreamRequest(endpoint, outcome)
	}
}

// requestKey builds an explicit cache key from the normalized request tuple.
// url.Values.Encode sorts keys, so equivalent queries collapse to one key.
func requestKey(path string, query url.Values) string {
	if len(query) == 0 {
		return http.MethodGet + " " + path
	}
	return http.MethodGet + " " + path + "?" + query.Encode()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// rateLimiter enforces one shared minimum spacing between calls. Concurrent
// callers reserve slots under the lock, so four parallel fetches come out
// serialized at the configured interval.
type rateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	next        time.Time
	now         func() time.Time
}

func newRateLimiter(minInterval time.Duration) *rateLimiter {
	return &rateLimiter{minInterval: minInterval, now: time.Now}
}

func (l *rateLimiter) wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	var wait time.Duration
	if l.next.After(now) {
		wait = l.next.Sub(now)
		l.next = l.next.Add(l.minInterval)
	} else {
		l.next = now.Add(l.minInterval)
	}
	l.mu.Unlock()

	if wait > 0 {
		return sleepContext(ctx, wait)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
