package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/logging"
	"github.com/ctu-chatbot/harvester/pkg/ratelimit"
)

// ErrDisallowed marks URLs the site's robots.txt forbids for our agent.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Result holds a fetched page.
type Result struct {
	URL         string        `json:"url"`
	StatusCode  int           `json:"status_code"`
	ContentType string        `json:"content_type"`
	Body        []byte        `json:"-"`
	FetchedAt   time.Time     `json:"fetched_at"`
	Duration    time.Duration `json:"duration"`
}

// Fetcher downloads pages with a per-host politeness delay and optional
// robots.txt enforcement. Safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	cfg     *config.FetchConfig
	limiter *ratelimit.HostLimiter

	robotsMu sync.Mutex
	robots   map[string]*robotstxt.RobotsData
}

func NewFetcher(cfg *config.FetchConfig) *Fetcher {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig().Fetch
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: ratelimit.NewHostLimiter(cfg.PolitenessDelay),
		robots:  make(map[string]*robotstxt.RobotsData),
	}
}

// Fetch downloads a single page. Non-2xx responses and oversized bodies
// are errors; the caller decides whether they fail the run or just the page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}

	if f.cfg.RespectRobotsTxt {
		allowed, err := f.allowed(ctx, parsed)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	if err := f.limiter.Wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.limiter.RecordError(parsed.Host)
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.limiter.RecordError(parsed.Host)
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	f.limiter.RecordSuccess(parsed.Host)

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxContentSize {
		return nil, fmt.Errorf("response for %s exceeds %d bytes", rawURL, f.cfg.MaxContentSize)
	}

	result := &Result{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   start,
		Duration:    time.Since(start),
	}

	logger := logging.GetLogger("fetcher")
	logger.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", result.Duration).
		Msg("Page fetched")
	return result, nil
}

// HostStats exposes per-host request statistics from the politeness limiter.
func (f *Fetcher) HostStats() map[string]ratelimit.HostStats {
	return f.limiter.Stats()
}

// allowed consults the host's robots.txt, fetching and caching it on first
// use. Hosts whose robots.txt cannot be retrieved are treated as allowed.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) (bool, error) {
	f.robotsMu.Lock()
	data, ok := f.robots[u.Host]
	f.robotsMu.Unlock()

	if !ok {
		fetched, err := f.fetchRobots(ctx, u)
		if err != nil {
			return false, err
		}
		data = fetched
		f.robotsMu.Lock()
		f.robots[u.Host] = data
		f.robotsMu.Unlock()
	}

	if data == nil {
		return true, nil
	}
	return data.FindGroup(f.cfg.UserAgent).Test(u.Path), nil
}

func (f *Fetcher) fetchRobots(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		logger := logging.GetLogger("fetcher")
		logger.Warn().Err(err).
			Str("host", u.Host).
			Msg("robots.txt unreachable, assuming allowed")
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, nil
	}
	return data, nil
}
