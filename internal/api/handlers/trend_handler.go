package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/analyzer"
	rediscache "github.com/skillcompass/backend/internal/cache/redis"
	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/metrics"
	"github.com/skillcompass/backend/pkg/logger"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
	trendCacheTTL      = 6 * time.Hour
)

type TrendHandler struct {
	engine     *analyzer.Engine
	trendCache *rediscache.Client // nil when redis is disabled
}

func NewTrendHandler(engine *analyzer.Engine, trendCache *rediscache.Client) *TrendHandler {
	return &TrendHandler{
		engine:     engine,
		trendCache: trendCache,
	}
}

func (h *TrendHandler) GetSkillTrend(c *fiber.Ctx) error {
	skill := c.Params("skill")
	track := c.Query("track")
	months := c.QueryInt("months", defaultTrendMonths)

	if skill == "" || track == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "skill and track are required",
		})
	}
	if months <= 0 || months > maxTrendMonths {
		months = defaultTrendMonths
	}

	creds := analyzer.Credentials{
		JobBoard:  c.Get("X-JobBoard-Credential"),
		Community: c.Get("X-Community-Credential"),
	}

	// L2 hit only for the default shape with no custom credentials.
	cacheable := h.trendCache != nil && months == defaultTrendMonths &&
		creds.JobBoard == "" && creds.Community == ""

	if cacheable {
		var cached analyzer.Trend
		hit, err := h.trendCache.GetTrend(c.Context(), skill, track, &cached)
		if err != nil {
			logger.Warn("Trend L2 cache read failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("trend_l2").Inc()
			return c.JSON(cached)
		} else {
			metrics.CacheMisses.WithLabelValues("trend_l2").Inc()
		}
	}

	trend, err := h.engine.SkillTrend(c.Context(), skill, track, creds, months)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownTrack) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown track",
			})
		}
		logger.Error("Failed to fetch skill trend", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trend",
		})
	}

	if cacheable {
		if err := h.trendCache.SetTrend(c.Context(), skill, track, trend, trendCacheTTL); err != nil {
			logger.Warn("Trend L2 cache write failed", zap.Error(err))
		}
	}

	return c.JSON(trend)
}
