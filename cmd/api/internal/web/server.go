package web

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loopreel/loopreel/cmd/api/handlers/appapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/authapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/cmd/api/handlers/eventapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/feedapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/ruleapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/taxonomyapi"
	"github.com/loopreel/loopreel/cmd/api/handlers/videoapi"
	"github.com/loopreel/loopreel/internal/auth"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/event"
	"github.com/loopreel/loopreel/internal/feed"
	"github.com/loopreel/loopreel/internal/media"
	"github.com/loopreel/loopreel/internal/vote"
)

type Webserver struct {
	*echo.Echo
	dbc    *db.DatabaseConnection
	tokens *auth.Tokens
	media  *media.Service
	votes  *vote.Service
	feed   *feed.Service
	events *event.Service
}

func NewWebserver(dbc *db.DatabaseConnection, tokens *auth.Tokens, mediaSvc *media.Service, voteSvc *vote.Service, feedSvc *feed.Service, eventSvc *event.Service) (*Webserver, error) {
	webserver := &Webserver{
		Echo:   echo.New(),
		dbc:    dbc,
		tokens: tokens,
		media:  mediaSvc,
		votes:  voteSvc,
		feed:   feedSvc,
		events: eventSvc,
	}

	if err := webserver.registerRoutes(); err != nil {
		return nil, err
	}
	if err := webserver.setupMiddleware(); err != nil {
		return nil, err
	}
	return webserver, nil
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	// Inline base64 video uploads arrive in the JSON body, so the limit is
	// far above a typical API's.
	s.Use(middleware.BodyLimit("256M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/healthz", "/metrics":
				return true
			default:
				return false
			}
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	// Bearer token middleware. Verification is best-effort here: handlers
	// that require auth check the context keys via common.RequireUser, while
	// public routes treat a missing or bad token as anonymous.
	s.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return next(c)
			}

			claims, err := s.tokens.Verify(raw)
			if err != nil {
				slog.Debug("rejected bearer token", "error", err)
				return next(c)
			}

			userID, err := db.ParseUUID(claims.Subject)
			if err != nil {
				return next(c)
			}
			appID, err := db.ParseUUID(claims.AppID)
			if err != nil {
				return next(c)
			}

			c.Set(common.CtxUserUUID, userID)
			c.Set(common.CtxAppUUID, appID)
			return next(c)
		}
	})

	return nil
}

func (s *Webserver) registerRoutes() error {
	apiGroup := s.Group("/api")

	apiGroup.POST("/auth/register", authapi.HandleRegister(s.dbc, s.tokens))
	apiGroup.POST("/auth/login", authapi.HandleLogin(s.dbc, s.tokens))

	apiGroup.POST("/apps", appapi.HandleCreate(s.dbc))
	apiGroup.GET("/apps/:idOrSlug", appapi.HandleGet(s.dbc))

	apiGroup.GET("/taxonomy", taxonomyapi.HandleList(s.dbc))
	apiGroup.POST("/taxonomy", taxonomyapi.HandleCreate(s.dbc))
	apiGroup.GET("/categories", taxonomyapi.HandleListCategories(s.dbc))

	apiGroup.POST("/videos", videoapi.HandleCreate(s.dbc, s.media))
	apiGroup.GET("/videos", videoapi.HandleList(s.dbc))
	apiGroup.GET("/videos/:id", videoapi.HandleGet(s.dbc, s.media))
	apiGroup.PATCH("/videos/:id", videoapi.HandleUpdate(s.dbc, s.media))
	apiGroup.POST("/videos/bulk-tag", videoapi.HandleBulkTag(s.media))
	apiGroup.POST("/videos/:id/vote", videoapi.HandleVote(s.votes))

	apiGroup.GET("/feed", feedapi.HandleGet(s.feed))

	apiGroup.POST("/events", eventapi.HandleLog(s.events))
	apiGroup.GET("/events", eventapi.HandleList(s.events))

	apiGroup.PUT("/ingest-default-rules/:source", ruleapi.HandleUpsert(s.dbc))
	apiGroup.GET("/ingest-default-rules", ruleapi.HandleList(s.dbc))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	s.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return nil
}
