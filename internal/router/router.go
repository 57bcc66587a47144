package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/familyflow/familyflow-api/internal/config"
	"github.com/familyflow/familyflow-api/internal/handler"
	"github.com/familyflow/familyflow-api/internal/middleware"
	"github.com/familyflow/familyflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler    *handler.StudentHandler
	SubjectHandler    *handler.SubjectHandler
	AssignmentHandler *handler.AssignmentHandler
	WalletHandler     *handler.WalletHandler
	RewardHandler     *handler.RewardHandler
	ProgressHandler   *handler.ProgressHandler
	AssistantHandler  *handler.AssistantHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students)

		if deps.WalletHandler != nil {
			deps.WalletHandler.Register(students)
		}
		if deps.ProgressHandler != nil {
			deps.ProgressHandler.Register(students)
		}
	}

	if deps.SubjectHandler != nil {
		subjects := api.Group("/subjects", jwtMiddleware)
		deps.SubjectHandler.Register(subjects)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.RewardHandler != nil {
		rewards := api.Group("/rewards", jwtMiddleware)
		deps.RewardHandler.Register(rewards)

		claims := api.Group("/claims", jwtMiddleware)
		deps.RewardHandler.RegisterClaims(claims)

		groupRewards := api.Group("/group-rewards", jwtMiddleware)
		deps.RewardHandler.RegisterGroupRewards(groupRewards)
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware, middleware.RateLimit("assistant", 10, 0))
		deps.AssistantHandler.Register(assistant)
	}
}
