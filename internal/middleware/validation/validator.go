package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/analyzer"
	"github.com/skillcompass/backend/internal/catalog"
)

type Config struct {
	MaxSkills           int
	MaxSkillNameLen     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed validate requests before they reach the
// engine: unknown tracks, oversized skill lists, bad proficiency
// values. Shape errors are the caller's fault and come back as 400s;
// the engine only ever sees well-formed input.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxSkills == 0 {
		cfg.MaxSkills = 100
	}
	if cfg.MaxSkillNameLen == 0 {
		cfg.MaxSkillNameLen = 100
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		if strings.Contains(c.Path(), "/api/v1/validate") && c.Method() == fiber.MethodPost {
			var req struct {
				Track  string `json:"track"`
				Skills []struct {
					Name        string `json:"name"`
					Proficiency string `json:"proficiency"`
				} `json:"skills"`
				Sort string `json:"sort"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if req.Track == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Track is required",
				})
			}
			if !catalog.IsTrack(req.Track) {
				cfg.Logger.Debug("Rejected unknown track",
					zap.String("track", req.Track),
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unknown track",
				})
			}

			if len(req.Skills) > cfg.MaxSkills {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Too many skills",
				})
			}

			for _, skill := range req.Skills {
				if strings.TrimSpace(skill.Name) == "" {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Skill name must not be empty",
					})
				}
				if len(skill.Name) > cfg.MaxSkillNameLen {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Skill name exceeds maximum length",
					})
				}
				if skill.Proficiency != "" && !analyzer.ValidProficiency(skill.Proficiency) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Proficiency must be beginner, intermediate or strong",
					})
				}
			}

			if req.Sort != "" && !analyzer.ValidStrategy(req.Sort) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unknown sort strategy",
				})
			}
		}

		return c.Next()
	}
}
