package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/analyzer"
	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/storage/models"
	"github.com/skillcompass/backend/internal/storage/sqlite"
	"github.com/skillcompass/backend/pkg/logger"
)

type ValidateHandler struct {
	engine *analyzer.Engine
	db     *sqlite.Client
}

func NewValidateHandler(engine *analyzer.Engine, db *sqlite.Client) *ValidateHandler {
	return &ValidateHandler{
		engine: engine,
		db:     db,
	}
}

type validateRequest struct {
	Track       string               `json:"track"`
	Skills      []analyzer.UserSkill `json:"skills"`
	Sort        string               `json:"sort"`
	Credentials analyzer.Credentials `json:"credentials"`
}

func (h *ValidateHandler) HandleValidate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse validate request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Track == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Track is required",
		})
	}

	result, err := h.engine.Validate(c.Context(), req.Track, req.Skills, analyzer.ValidateOptions{
		SortStrategy: req.Sort,
		Credentials:  req.Credentials,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownTrack) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown track",
			})
		}
		logger.Error("Failed to process validation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process validation",
		})
	}

	h.recordSnapshot(result, len(req.Skills), req.Sort)

	return c.JSON(result)
}

// recordSnapshot persists the validation for the history endpoint.
// Best effort: a storage failure is logged, never surfaced.
func (h *ValidateHandler) recordSnapshot(result *analyzer.Result, skillCount int, strategy string) {
	if h.db == nil {
		return
	}
	if strategy == "" {
		strategy = analyzer.SortImpact
	}

	record := &models.ValidationRecord{
		ID:              result.ID,
		Track:           result.Track,
		UserSkillCount:  skillCount,
		GapCount:        len(result.Gaps),
		CoveragePercent: result.CoveragePercent,
		SortStrategy:    strategy,
		LatencyMS:       result.LatencyMS,
		CreatedAt:       time.Now(),
	}
	if err := h.db.InsertValidationRecord(record); err != nil {
		logger.Warn("Failed to persist validation snapshot", zap.Error(err))
		return
	}

	for _, gap := range result.Gaps {
		gapRecord := &models.GapRecord{
			ValidationID: result.ID,
			Skill:        gap.Skill,
			Weight:       gap.Weight,
		}
		if gap.Evidence != nil {
			gapRecord.CombinedScore = gap.Evidence.CombinedScore
			gapRecord.DemandCategory = gap.Evidence.DemandCategory
		}
		if err := h.db.InsertGapRecord(gapRecord); err != nil {
			logger.Warn("Failed to persist gap record", zap.Error(err))
		}
	}
}

func (h *ValidateHandler) GetHistory(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(fiber.Map{"history": []interface{}{}})
	}

	track := c.Query("track")
	limit := c.QueryInt("limit", 20)

	records, err := h.db.GetValidationHistory(track, limit)
	if err != nil {
		logger.Error("Failed to load validation history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}

func (h *ValidateHandler) GetTracks(c *fiber.Ctx) error {
	tracks := make([]fiber.Map, 0, len(catalog.Tracks()))
	for _, track := range catalog.Tracks() {
		skills, err := catalog.CoreSkills(track)
		if err != nil {
			continue
		}
		tracks = append(tracks, fiber.Map{
			"name":        track,
			"skill_count": len(skills),
		})
	}

	return c.JSON(fiber.Map{
		"tracks": tracks,
	})
}
