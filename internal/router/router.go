package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/survey-go-api/internal/config"
	"github.com/noah-isme/survey-go-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler          *handler.UserHandler
	SurveyHandler        *handler.SurveyHandler
	QuestionHandler      *handler.QuestionHandler
	ResponseHandler      *handler.ResponseHandler
	AnswerHandler        *handler.AnswerHandler
	CompetitionHandler   *handler.CompetitionHandler
	ParticipationHandler *handler.ParticipationHandler
	NotificationHandler  *handler.NotificationHandler
	FaqHandler           *handler.FaqHandler
	SupportInfoHandler   *handler.SupportInfoHandler
	AuditLogHandler      *handler.AuditLogHandler
	DashboardHandler     *handler.DashboardHandler

	// Auth verifies the bearer token and requires a user. Nil leaves routes open.
	Auth fiber.Handler
	// CredentialLimit throttles register and login.
	CredentialLimit fiber.Handler
	// Metrics serves the Prometheus scrape endpoint when set.
	Metrics fiber.Handler
	// HealthProbes are run by /api/v1/health.
	HealthProbes []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	api := app.Group("/api")
	auth := deps.Auth

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"), auth, deps.CredentialLimit)
	}
	if deps.SurveyHandler != nil {
		deps.SurveyHandler.Register(api.Group("/surveys"), auth)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(api.Group("/questions"), auth)
	}
	if deps.ResponseHandler != nil {
		deps.ResponseHandler.Register(api.Group("/surveyresponses"), auth)
	}
	if deps.AnswerHandler != nil {
		deps.AnswerHandler.Register(api.Group("/answers"), auth)
	}
	if deps.CompetitionHandler != nil {
		deps.CompetitionHandler.Register(api.Group("/competitions"), auth)
		deps.CompetitionHandler.RegisterWinners(api.Group("/competitionwinners"), auth)
	}
	if deps.ParticipationHandler != nil {
		deps.ParticipationHandler.Register(api.Group("/effectiveparticipation"), auth)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications"), auth)
	}
	if deps.FaqHandler != nil {
		deps.FaqHandler.Register(api.Group("/faqs"), auth)
	}
	if deps.SupportInfoHandler != nil {
		deps.SupportInfoHandler.Register(api.Group("/supportinfo"), auth)
	}
	if deps.AuditLogHandler != nil {
		deps.AuditLogHandler.Register(api.Group("/auditlogs"), auth)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard"), auth)
	}
}
