package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/cache/memory"
	"github.com/skillcompass/backend/internal/demand"
	"github.com/skillcompass/backend/internal/metrics"
	"github.com/skillcompass/backend/pkg/circuitbreaker"
	"github.com/skillcompass/backend/pkg/config"
	"github.com/skillcompass/backend/pkg/logger"
	"github.com/skillcompass/backend/pkg/retry"
	"github.com/skillcompass/backend/pkg/utils"
)

const providerName = "stackexchange"

// Client reports developer-community activity for a skill: the number
// of questions tagged with it on the configured Stack Exchange site
// within the provider window. Works unauthenticated at a reduced API
// quota; a key raises the quota, it is not required.
type Client struct {
	key     string
	site    string
	baseURL string
	window  string

	cache      *memory.Cache
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewClient(cfg config.StackExchangeConfig, cache *memory.Cache) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := circuitbreaker.New(providerName, circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Logger:           logger.Log,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		key:        cfg.Key,
		site:       cfg.Site,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		window:     cfg.Window,
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		retryCfg:   retry.DefaultConfig(),
	}
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) Demand(ctx context.Context, skill, track, credential string) demand.Result {
	key := c.cacheKey(skill, track, credential, c.window)

	value, cached, err := c.cache.GetOrCompute(key, 0, func() (interface{}, error) {
		from, to := windowBounds(c.window, time.Now())
		return c.fetchCount(ctx, skill, credential, from, to)
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		logger.Warn("Stack Exchange lookup degraded to zero evidence",
			zap.String("skill", skill),
			zap.String("track", track),
			zap.Error(err),
		)
		return demand.Degraded(err)
	}

	if cached {
		metrics.CacheHits.WithLabelValues("demand").Inc()
	} else {
		metrics.CacheMisses.WithLabelValues("demand").Inc()
		metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()
	}

	return value.(demand.Result)
}

// MonthlySeries counts tagged questions month by month, most recent
// last. Each month is cached independently: past months never change,
// so warm series cost one request for the current month only.
func (c *Client) MonthlySeries(ctx context.Context, skill, track, credential string, months int) []demand.TrendPoint {
	if months <= 0 {
		return []demand.TrendPoint{}
	}

	points := make([]demand.TrendPoint, 0, months)
	now := time.Now()

	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		month := monthStart.Format("2006-01")

		key := c.cacheKey(skill, track, credential, month)
		value, _, err := c.cache.GetOrCompute(key, 0, func() (interface{}, error) {
			return c.fetchCount(ctx, skill, credential, monthStart, monthEnd)
		})
		if err != nil {
			points = append(points, demand.TrendPoint{Month: month, Count: 0, Err: err.Error()})
			continue
		}
		points = append(points, demand.TrendPoint{Month: month, Count: value.(demand.Result).Count})
	}

	return points
}

func (c *Client) cacheKey(skill, track, credential, window string) string {
	params := map[string]string{
		"provider": providerName,
		"skill":    strings.ToLower(skill),
		"track":    strings.ToLower(track),
		"window":   window,
	}
	if credential != "" {
		params["cred"] = utils.HashString(credential)
	}
	return memory.BuildKey("demand", params)
}

func (c *Client) fetchCount(ctx context.Context, skill, credential string, from, to time.Time) (demand.Result, error) {
	var count int

	err := c.breaker.Execute(ctx, func() error {
		var err error
		count, err = retry.DoWithResult(ctx, c.retryCfg, func() (int, error) {
			return c.questionTotal(ctx, skill, credential, from, to)
		})
		return err
	})
	if err != nil {
		return demand.Result{}, err
	}

	return demand.Result{Count: count, FetchedAt: time.Now()}, nil
}

func (c *Client) questionTotal(ctx context.Context, skill, credential string, from, to time.Time) (int, error) {
	params := url.Values{}
	params.Set("site", c.site)
	params.Set("tagged", tagFor(skill))
	params.Set("filter", "total")
	params.Set("fromdate", strconv.FormatInt(from.Unix(), 10))
	params.Set("todate", strconv.FormatInt(to.Unix(), 10))

	key := c.key
	if credential != "" {
		key = credential
	}
	if key != "" {
		params.Set("key", key)
	}

	endpoint := fmt.Sprintf("%s/questions?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("stackexchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stackexchange returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var totalResp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &totalResp); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if totalResp.Total < 0 {
		return 0, nil
	}

	logger.Debug("Stack Exchange question total",
		zap.String("skill", skill),
		zap.Int("count", totalResp.Total),
	)

	return totalResp.Total, nil
}

// tagFor maps a catalog skill name onto its Stack Exchange tag. Tags
// are lowercase with hyphens; a few skills have established tags that
// the mechanical form would miss.
func tagFor(skill string) string {
	overrides := map[string]string{
		"node.js":           "node.js",
		"rest api design":   "rest",
		"responsive design": "responsive-design",
		"build tools":       "webpack",
		"message queues":    "message-queue",
	}

	lower := strings.ToLower(skill)
	if tag, ok := overrides[lower]; ok {
		return tag
	}
	return strings.ReplaceAll(lower, " ", "-")
}

func windowBounds(window string, now time.Time) (time.Time, time.Time) {
	days := 30
	if n, err := strconv.Atoi(strings.TrimSuffix(window, "d")); err == nil && n > 0 {
		days = n
	}
	return now.AddDate(0, 0, -days), now
}
