package infra

import (
	"fmt"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/umalmyha/leads/docs" // swagger spec
	"github.com/umalmyha/leads/internal/handlers"
	"github.com/umalmyha/leads/internal/middleware"
	"github.com/umalmyha/leads/internal/monitoring"
	"github.com/umalmyha/leads/internal/service"
	"github.com/umalmyha/leads/internal/validation"
)

func Router(clientSvc service.ClientService, exportDir string, logger *logrus.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	v, err := validation.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to build validator - %w", err)
	}
	e.Validator = v
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())

	// Handlers
	clientHandler := handlers.NewClientHTTPHandler(clientSvc, exportDir)
	healthHandler := handlers.NewHealthHTTPHandler(clientSvc)

	// Service routes
	e.GET("/api-docs/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(monitoring.Handler()))
	e.GET("/health", healthHandler.Check)

	// API routes
	clientsAPI := e.Group("/api/clients")
	clientsAPI.POST("/add", clientHandler.Add)
	clientsAPI.GET("/export", clientHandler.Export)

	return e, nil
}
