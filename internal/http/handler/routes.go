package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthdash/internal/http/middleware"
	"healthdash/internal/model"
	"healthdash/internal/notify"
	"healthdash/internal/service"
)

// NotificationService is the notification settings use case.
type NotificationService interface {
	Status() notify.Status
	SetEnabled(ctx context.Context, enabled bool) (notify.Status, error)
	ReportPermission(ctx context.Context, p model.Permission) (notify.Status, error)
}

// Dependencies are the collaborators of the HTTP layer. A nil DB means the settings
// live in memory; a nil Hub disables /ws.
type Dependencies struct {
	DB            *sql.DB
	Records       service.RecordService
	Summaries     service.SummaryService
	Sessions      service.SessionService
	Shares        service.ShareService
	Notifications NotificationService
	Hub           *notify.Hub
	Gatherer      prometheus.Gatherer
	LinkExpiry    time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if d.Hub != nil {
		app.Get("/ws", middleware.RequireSocketSession(d.Sessions), notify.Upgrade(), d.Hub.Handler())
	}

	app.Get("/share/:token", ResolveShare(d.Shares))

	app.Post("/session", Login(d.Sessions))
	session := app.Group("/session", middleware.RequireSession(d.Sessions))
	session.Get("", CurrentSession(d.Sessions))
	session.Delete("", Logout(d.Sessions))

	api := app.Group("/api", middleware.RequireSession(d.Sessions))

	api.Get("/events", ListEvents(d.Records))
	api.Post("/events", CreateEvent(d.Records))
	api.Put("/events/:id", UpdateEvent(d.Records))
	api.Delete("/events/:id", DeleteEvent(d.Records))

	api.Get("/documents", ListDocuments(d.Records))
	api.Get("/documents/:id", GetDocument(d.Records))
	api.Delete("/documents/:id", DeleteDocument(d.Records))
	api.Get("/documents/:id/content", DocumentContent(d.Records))
	api.Get("/documents/:id/link", DocumentLink(d.Records, d.LinkExpiry))
	api.Post("/documents/:id/summary", SummarizeDocument(d.Summaries))

	api.Get("/appointments", ListAppointments(d.Records))
	api.Post("/appointments", CreateAppointment(d.Records))
	api.Get("/appointments/upcoming", UpcomingAppointments(d.Records))
	api.Put("/appointments/:id", UpdateAppointment(d.Records))
	api.Delete("/appointments/:id", DeleteAppointment(d.Records))

	api.Get("/stats", Stats(d.Records))

	api.Get("/notifications", NotificationStatus(d.Notifications))
	api.Put("/notifications", SetNotifications(d.Notifications))
	api.Put("/notifications/permission", ReportPermission(d.Notifications))

	api.Post("/share", CreateShare(d.Shares))
}
