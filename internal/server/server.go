// Package server exposes the sync engine over HTTP for the browser extension.
//
// The single meaningful route is POST /sync_from_extension: the extension
// sends the timetable HTML, the date-range sentence and a Google access token,
// and receives the aggregate sync summary. CORS is locked to the configured
// extension origin.
package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/locnguyen/uel-calendar-sync/internal/config"
	"github.com/locnguyen/uel-calendar-sync/internal/gcal"
	"github.com/locnguyen/uel-calendar-sync/internal/history"
	"github.com/locnguyen/uel-calendar-sync/internal/logger"
	"github.com/locnguyen/uel-calendar-sync/internal/syncer"
	"github.com/locnguyen/uel-calendar-sync/internal/timetable"
)

// SyncRequest is the payload the extension posts.
type SyncRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	TimetableHTML string `json:"timetable_html" validate:"required"`
	DateRangeText string `json:"date_range_text" validate:"required"`
}

// CalendarFactory builds the remote calendar transport for one request's
// access token. Tests substitute a local transport here.
type CalendarFactory func(accessToken string) syncer.Calendar

// Server hosts the sync endpoint.
type Server struct {
	app         *fiber.App
	cfg         *config.Config
	store       *history.Storage
	validate    *validator.Validate
	newCalendar CalendarFactory
}

// New creates a server bound to the given configuration. The history store
// may be nil; runs are then not recorded.
func New(cfg *config.Config, store *history.Storage) *Server {
	return NewWithFactory(cfg, store, func(accessToken string) syncer.Calendar {
		return gcal.NewClient(accessToken)
	})
}

// NewWithFactory creates a server with a custom calendar transport factory.
func NewWithFactory(cfg *config.Config, store *history.Storage, factory CalendarFactory) *Server {
	s := &Server{
		app:         fiber.New(fiber.Config{DisableStartupMessage: true}),
		cfg:         cfg,
		store:       store,
		validate:    validator.New(),
		newCalendar: factory,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	if s.cfg.AllowedOrigin != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.AllowedOrigin,
			AllowMethods: "POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("UEL Sync Backend OK. Use the Chrome extension.")
	})
	s.app.Post("/sync_from_extension", s.handleSync)
}

// Listen serves on the configured address until the process exits.
func (s *Server) Listen() error {
	logger.Info("server listening", logger.Fields{"addr": s.cfg.Listen})
	return s.app.Listen(s.cfg.Listen)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleSync(c *fiber.Ctx) error {
	sessionID := uuid.NewString()

	token := bearerToken(c.Get("Authorization"))
	if token == "" {
		return errorJSON(c, fiber.StatusUnauthorized, "Access Token missing.")
	}

	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Request must be JSON.")
	}
	if err := s.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing data: "+missingField(err))
	}

	logger.Info("sync request", logger.Fields{
		"session": sessionID,
		"user":    req.UserID,
	})

	extractor := timetable.NewWithTableID(s.cfg.TableID)
	events, week, err := extractor.Extract(req.TimetableHTML, req.DateRangeText)
	if err != nil {
		var formatErr *timetable.FormatError
		var structureErr *timetable.StructureError
		if errors.As(err, &formatErr) || errors.As(err, &structureErr) {
			return errorJSON(c, fiber.StatusBadRequest, "Timetable parsing error: "+err.Error())
		}
		logger.Error("extraction failed", logger.Fields{"session": sessionID}, err)
		return errorJSON(c, fiber.StatusInternalServerError, "Server extraction error.")
	}

	engine := syncer.NewWithOptions(s.newCalendar(token), s.cfg.Palette, s.cfg.ReminderMinutes)
	summary, err := engine.Sync(events, week)
	if err != nil {
		var readErr *gcal.RemoteReadError
		if errors.As(err, &readErr) {
			return errorJSON(c, fiber.StatusServiceUnavailable, "Could not read existing calendar events.")
		}
		logger.Error("sync failed", logger.Fields{"session": sessionID}, err)
		return errorJSON(c, fiber.StatusInternalServerError, "Server sync error.")
	}

	if s.store != nil {
		if err := s.store.Append(req.UserID, *summary); err != nil {
			logger.Warn("recording sync history failed", logger.Fields{"session": sessionID, "error": err.Error()})
		}
	}

	return c.JSON(summary)
}

// bearerToken extracts the access token from an Authorization header.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// missingField names the first failed validation field in payload terms.
func missingField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "UserID":
			return "user_id"
		case "TimetableHTML":
			return "timetable_html"
		case "DateRangeText":
			return "date_range_text"
		}
	}
	return "payload"
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
