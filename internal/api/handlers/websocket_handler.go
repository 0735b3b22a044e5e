package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/analyzer"
	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/graph"
	"github.com/skillcompass/backend/pkg/logger"
)

// WebSocketHandler streams a validation progressively: one frame per
// gap as its evidence resolves, then a complete frame with the full
// result. The follow-up Validate call reuses the per-gap evidence via
// the cache, so the client pays for each provider lookup once.
type WebSocketHandler struct {
	engine *analyzer.Engine
}

func NewWebSocketHandler(engine *analyzer.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type        string               `json:"type"`
			Track       string               `json:"track"`
			Skills      []analyzer.UserSkill `json:"skills"`
			Sort        string               `json:"sort"`
			Credentials analyzer.Credentials `json:"credentials"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "validate" {
			continue
		}

		logger.Info("Processing WebSocket validation", zap.String("track", msg.Track))

		if err := h.streamValidation(c, msg.Track, msg.Skills, msg.Sort, msg.Credentials); err != nil {
			logger.Error("Failed to stream validation", zap.Error(err))
			h.sendError(c, "Failed to process validation")
		}
	}
}

func (h *WebSocketHandler) streamValidation(c *websocket.Conn, track string, skills []analyzer.UserSkill, sortStrategy string, creds analyzer.Credentials) error {
	ctx := context.Background()

	coreSkills, err := catalog.CoreSkills(track)
	if err != nil {
		h.sendError(c, "Unknown track")
		return nil
	}

	gaps := analyzer.ComputeGaps(track, coreSkills, skills)
	gapNames := make([]string, len(gaps))
	for i, g := range gaps {
		gapNames[i] = g.Skill
	}
	order := graph.LearningOrder(track, gapNames)

	if err := c.WriteJSON(map[string]interface{}{
		"type":      "status",
		"gap_count": len(gaps),
		"track":     track,
	}); err != nil {
		return err
	}

	// Evidence frames follow learning order so the client can render
	// the path top to bottom as data arrives.
	byName := make(map[string]analyzer.Gap, len(gaps))
	for _, g := range gaps {
		byName[g.Skill] = g
	}
	for _, name := range order {
		gap := byName[name]
		gap.Evidence = h.engine.EvidenceFor(ctx, gap.Skill, track, creds)

		if err := c.WriteJSON(map[string]interface{}{
			"type": "gap",
			"gap":  gap,
		}); err != nil {
			return err
		}
	}

	result, err := h.engine.Validate(ctx, track, skills, analyzer.ValidateOptions{
		SortStrategy: sortStrategy,
		Credentials:  creds,
	})
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":   "complete",
		"result": result,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
