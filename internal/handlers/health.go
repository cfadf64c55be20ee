package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/umalmyha/leads/internal/service"
	"net/http"
)

type health struct {
	Status string `json:"status"`
}

type HealthHTTPHandler struct {
	clientSvc service.ClientService
}

func NewHealthHTTPHandler(clientSvc service.ClientService) *HealthHTTPHandler {
	return &HealthHTTPHandler{clientSvc: clientSvc}
}

// Check pings datastore
// @Summary     Health check
// @Description Reports whether datastore is reachable
// @Tags        health
// @Produce     json
// @Success     200 {object} health
// @Failure     503 {object} health
// @Router      /health [get]
func (h *HealthHTTPHandler) Check(c echo.Context) error {
	if err := h.clientSvc.Ping(c.Request().Context()); err != nil {
		logrus.WithError(err).Error("datastore ping failed")
		return c.JSON(http.StatusServiceUnavailable, &health{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, &health{Status: "ok"})
}
