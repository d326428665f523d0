package torn

import (
	"context"
	"errors"
	"fcd/internal/providers"
	"fcd/internal/structures"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const maxResponseSize = 4 << 20 // 4 MB

const (
	defaultTimeout      = 15 * time.Second
	defaultRetryBackoff = 2 * time.Second
	defaultFeedPageSize = 100
)

type ClientInterface interface {
	ChainStatus(ctx context.Context, key string) (*ChainStatus, error)
	ChainReport(ctx context.Context, key string, chainID int64) (*ChainReport, error)
	NewsPage(ctx context.Context, key string, cursor string) (*NewsPage, error)
	ChainList(ctx context.Context, key string, limit int, before int64) (*ChainListPage, error)
}

// requestWindow serializes outbound calls against a rolling request count.
// Acquire blocks until a slot frees instead of failing.
type requestWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
}

func (w *requestWindow) acquire(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-w.window)
		trimmed := 0
		for trimmed < len(w.stamps) && w.stamps[trimmed].Before(cutoff) {
			trimmed++
		}
		w.stamps = w.stamps[trimmed:]
		if len(w.stamps) < w.limit {
			w.stamps = append(w.stamps, now)
			w.mu.Unlock()
			return nil
		}
		wait := w.stamps[0].Add(w.window).Sub(now)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

type Client struct {
	baseUrl      string
	httpClient   *http.Client
	window       *requestWindow
	retryBackoff time.Duration
	pageSize     int
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	timeout := conf.Api.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backoff := conf.Api.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	pageSize := conf.Sync.FeedPageSize
	if pageSize <= 0 {
		pageSize = defaultFeedPageSize
	}

	return &Client{
		baseUrl:    strings.TrimSuffix(conf.Api.BaseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
		window: &requestWindow{
			limit:  conf.Api.RequestsPerMinute,
			window: time.Minute,
		},
		retryBackoff: backoff,
		pageSize:     pageSize,
		logger:       logger,
		metrics:      metrics,
	}
}

func (c *Client) ChainStatus(ctx context.Context, key string) (*ChainStatus, error) {
	body, err := c.request(ctx, key, "chain", c.baseUrl+"/faction/chain")
	if err != nil {
		return nil, err
	}
	var envelope chainStatusEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode chain status: %w", err)
	}
	if envelope.Chain == nil || envelope.Chain.ID == 0 {
		return nil, nil
	}
	return envelope.Chain, nil
}

func (c *Client) ChainReport(ctx context.Context, key string, chainID int64) (*ChainReport, error) {
	body, err := c.request(ctx, key, "chainreport", fmt.Sprintf("%s/faction/%d/chainreport", c.baseUrl, chainID))
	if err != nil {
		return nil, err
	}
	var envelope chainReportEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode chain report: %w", err)
	}
	if envelope.ChainReport == nil {
		return nil, fmt.Errorf("chain report payload missing for chain %d", chainID)
	}
	return envelope.ChainReport, nil
}

// NewsPage fetches one newest-first page of the armory feed. An empty cursor
// starts from the head; otherwise the cursor is the opaque prev link of the
// previous page, passed through unchanged.
func (c *Client) NewsPage(ctx context.Context, key string, cursor string) (*NewsPage, error) {
	rawUrl := cursor
	if rawUrl == "" {
		query := url.Values{}
		query.Set("cat", "armoryAction")
		query.Set("striptags", "false")
		query.Set("sort", "DESC")
		query.Set("limit", strconv.Itoa(c.pageSize))
		rawUrl = c.baseUrl + "/faction/news?" + query.Encode()
	}

	body, err := c.request(ctx, key, "news", rawUrl)
	if err != nil {
		return nil, err
	}
	var envelope newsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode news page: %w", err)
	}
	return &NewsPage{
		Items: envelope.News,
		Prev:  envelope.Metadata.Links.Prev,
	}, nil
}

func (c *Client) ChainList(ctx context.Context, key string, limit int, before int64) (*ChainListPage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if before > 0 {
		query.Set("to", strconv.FormatInt(before, 10))
	}
	rawUrl := c.baseUrl + "/faction/chains"
	if encoded := query.Encode(); encoded != "" {
		rawUrl += "?" + encoded
	}

	body, err := c.request(ctx, key, "chains", rawUrl)
	if err != nil {
		return nil, err
	}
	var envelope chainListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode chain list: %w", err)
	}
	return &ChainListPage{
		Chains: envelope.Chains,
		Prev:   envelope.Metadata.Links.Prev,
	}, nil
}

// request issues one logical API call: a single attempt, retried at most
// once when the API signals throttling. Every other error surfaces as-is.
func (c *Client) request(ctx context.Context, key, selection, rawUrl string) ([]byte, error) {
	body, err := c.do(ctx, key, selection, rawUrl)

	var apiErr *ApiError
	if errors.As(err, &apiErr) && apiErr.Throttled() {
		c.metrics.IncTornRetries()
		c.logger.Warnf(providers.TypeTorn, "Throttled on %s, retrying once in %s", selection, c.retryBackoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryBackoff):
		}
		return c.do(ctx, key, selection, rawUrl)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, key, selection, rawUrl string) ([]byte, error) {
	if err := c.window.acquire(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "ApiKey "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncTornRequests(selection, "error")
		return nil, fmt.Errorf("torn api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.IncTornRequests(selection, "error")
		return nil, fmt.Errorf("failed to read torn api response: %w", err)
	}

	// The API reports failures inside a 200 body.
	var errEnvelope struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"error"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errEnvelope); err == nil && errEnvelope.Error != nil {
		apiErr := &ApiError{Code: errEnvelope.Error.Code, Message: errEnvelope.Error.Message}
		result := "api_error"
		if apiErr.Throttled() {
			result = "throttled"
		}
		c.metrics.IncTornRequests(selection, result)
		return nil, apiErr
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.IncTornRequests(selection, "error")
		return nil, fmt.Errorf("torn api returned status %d", resp.StatusCode)
	}

	c.metrics.IncTornRequests(selection, "ok")
	return body, nil
}
