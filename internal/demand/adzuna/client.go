package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
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

const providerName = "adzuna"

// Client reports job-posting counts from Adzuna. With API credentials
// it hits the search API; without them it falls back to scraping the
// public results page, which is coarser but still a usable signal.
// Every lookup goes through the evidence cache first.
type Client struct {
	appID   string
	apiKey  string
	baseURL string
	country string
	window  string

	cache      *memory.Cache
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewClient(cfg config.AdzunaConfig, cache *memory.Cache) *Client {
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
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		country:    cfg.Country,
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

// Demand returns the posting count for (skill, track). Failures come
// back as zero-count degraded results with the error attached; nothing
// degraded is ever written to the cache.
func (c *Client) Demand(ctx context.Context, skill, track, credential string) demand.Result {
	key := c.cacheKey(skill, track, credential, c.window)

	value, cached, err := c.cache.GetOrCompute(key, 0, func() (interface{}, error) {
		return c.fetchCount(ctx, skill, track, credential)
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		logger.Warn("Adzuna lookup degraded to zero evidence",
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

// MonthlySeries returns up to months points of posting history, most
// recent last. Months the provider cannot answer for are present with
// a zero count and the error attached.
func (c *Client) MonthlySeries(ctx context.Context, skill, track, credential string, months int) []demand.TrendPoint {
	if months <= 0 {
		return []demand.TrendPoint{}
	}

	history, err := c.fetchHistory(ctx, skill, credential, months)

	points := make([]demand.TrendPoint, 0, months)
	now := time.Now()
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		if err != nil {
			points = append(points, demand.TrendPoint{Month: month, Count: 0, Err: err.Error()})
			continue
		}

		key := c.cacheKey(skill, track, credential, month)
		value, _, cacheErr := c.cache.GetOrCompute(key, 0, func() (interface{}, error) {
			count, ok := history[month]
			if !ok {
				return nil, fmt.Errorf("no history for %s", month)
			}
			return demand.Result{Count: count, FetchedAt: time.Now()}, nil
		})
		if cacheErr != nil {
			points = append(points, demand.TrendPoint{Month: month, Count: 0, Err: cacheErr.Error()})
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

func (c *Client) fetchCount(ctx context.Context, skill, track, credential string) (demand.Result, error) {
	var count int

	err := c.breaker.Execute(ctx, func() error {
		var err error
		count, err = retry.DoWithResult(ctx, c.retryCfg, func() (int, error) {
			appID, apiKey := c.credentials(credential)
			if appID != "" && apiKey != "" {
				return c.countFromAPI(ctx, skill, appID, apiKey)
			}
			return c.countFromScrape(ctx, skill, track)
		})
		return err
	})
	if err != nil {
		return demand.Result{}, err
	}

	return demand.Result{Count: count, FetchedAt: time.Now()}, nil
}

// credentials resolves the effective app id and key. A per-request
// credential of the form "appID:apiKey" overrides the configured pair.
func (c *Client) credentials(credential string) (string, string) {
	if credential != "" {
		if id, key, ok := strings.Cut(credential, ":"); ok && id != "" && key != "" {
			return id, key
		}
	}
	return c.appID, c.apiKey
}

func (c *Client) countFromAPI(ctx context.Context, skill, appID, apiKey string) (int, error) {
	params := url.Values{}
	params.Set("app_id", appID)
	params.Set("app_key", apiKey)
	params.Set("what", skill)
	params.Set("results_per_page", "1")

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", c.baseURL, c.country, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("adzuna request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("adzuna returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var searchResp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if searchResp.Count < 0 {
		return 0, nil
	}

	logger.Debug("Adzuna API count",
		zap.String("skill", skill),
		zap.Int("count", searchResp.Count),
	)

	return searchResp.Count, nil
}

var resultCountPattern = regexp.MustCompile(`([\d,]+)\s+(?:jobs|ads|results)`)

func (c *Client) countFromScrape(ctx context.Context, skill, track string) (int, error) {
	searchURL := fmt.Sprintf("https://www.adzuna.com/search?q=%s",
		url.QueryEscape(fmt.Sprintf("%s %s", skill, track)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scrape returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if match := resultCountPattern.FindStringSubmatch(doc.Find("header, h1, div.search-header").Text()); match != nil {
		raw := strings.ReplaceAll(match[1], ",", "")
		if count, err := strconv.Atoi(raw); err == nil {
			logger.Debug("Adzuna scraped header count", zap.String("skill", skill), zap.Int("count", count))
			return count, nil
		}
	}

	// No count banner: fall back to counting listing cards on the first
	// page. Undercounts badly, but a best-effort floor beats zero.
	count := doc.Find("article[data-aid], div.job-result").Length()
	logger.Debug("Adzuna scraped card count", zap.String("skill", skill), zap.Int("count", count))

	return count, nil
}

func (c *Client) fetchHistory(ctx context.Context, skill, credential string, months int) (map[string]int, error) {
	appID, apiKey := c.credentials(credential)
	if appID == "" || apiKey == "" {
		return nil, fmt.Errorf("history requires api credentials")
	}

	params := url.Values{}
	params.Set("app_id", appID)
	params.Set("app_key", apiKey)
	params.Set("what", skill)
	params.Set("months", strconv.Itoa(months))

	endpoint := fmt.Sprintf("%s/%s/history?%s", c.baseURL, c.country, params.Encode())

	var history map[string]int

	err := c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("adzuna history request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("adzuna history returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		var historyResp struct {
			Month map[string]int `json:"month"`
		}
		if err := json.Unmarshal(body, &historyResp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		history = historyResp.Month
		return nil
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}
