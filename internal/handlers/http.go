package handlers

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/export"
	"github.com/umalmyha/leads/internal/model"
	"github.com/umalmyha/leads/internal/monitoring"
	"github.com/umalmyha/leads/internal/service"
	"github.com/umalmyha/leads/internal/validation"
	"net/http"
	"os"
	"path/filepath"
)

const csvContentType = "text/csv"

type newClient struct {
	Title         string  `json:"title" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Surname       string  `json:"surname" validate:"required"`
	PhoneNumber   string  `json:"phone_number" validate:"required,mobile_phone"`
	IDNumber      string  `json:"id_number" validate:"required,id_number"`
	Email         string  `json:"email" validate:"required,email"`
	Notes         *string `json:"notes"`
	OptInDate     string  `json:"optindate" validate:"omitempty,iso_date"`
	PreferredTime string  `json:"preferred_time" validate:"omitempty,clock_time"`
	OfferID       any     `json:"offerID" validate:"omitempty,string_value" swaggertype:"string"`
}

func (nc *newClient) client() *model.Client {
	c := &model.Client{
		Title:         nc.Title,
		Name:          nc.Name,
		Surname:       nc.Surname,
		PhoneNumber:   nc.PhoneNumber,
		IDNumber:      nc.IDNumber,
		Email:         nc.Email,
		Notes:         nonEmpty(nc.Notes),
		OptInDate:     nonEmpty(&nc.OptInDate),
		PreferredTime: nonEmpty(&nc.PreferredTime),
	}

	if offerID, ok := nc.OfferID.(string); ok {
		c.OfferID = nonEmpty(&offerID)
	}
	return c
}

// bindAndValidate reports type mismatches together with rule violations of the remaining fields
func bindAndValidate(c echo.Context, i any) error {
	bindErr := c.Bind(i)
	if bindErr != nil && !validation.IsTypeMismatch(bindErr) {
		return validation.FromBindError(bindErr)
	}

	err := c.Validate(i)
	if bindErr == nil {
		return err
	}
	return validation.FromBindError(bindErr).Merge(err)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

type ClientHTTPHandler struct {
	clientSvc service.ClientService
	exportDir string
}

func NewClientHTTPHandler(clientSvc service.ClientService, exportDir string) *ClientHTTPHandler {
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	return &ClientHTTPHandler{clientSvc: clientSvc, exportDir: exportDir}
}

// Add registers new lead
// @Summary     Add client lead
// @Description Validates lead and stores it unless phone number is already registered
// @Tags        clients
// @Accept      json
// @Produce     json
// @Param       newClient body     newClient true "Client lead"
// @Success     201       {object} Envelope
// @Failure     400       {object} Envelope
// @Failure     500       {object} Envelope
// @Router      /api/clients/add [post]
func (h *ClientHTTPHandler) Add(c echo.Context) error {
	var nc newClient
	if err := bindAndValidate(c, &nc); err != nil {
		return err
	}

	client, err := h.clientSvc.Add(c.Request().Context(), nc.client())
	if err != nil {
		return err
	}

	monitoring.LeadsTotal.WithLabelValues(monitoring.LeadCreated).Inc()
	return c.JSON(http.StatusCreated, createdEnvelope(client.LeadID))
}

// Export downloads all leads
// @Summary     Export client leads
// @Description Returns every lead ordered by lead id as csv attachment
// @Tags        clients
// @Produce     text/csv
// @Produce     json
// @Success     200 {string} file
// @Failure     500 {object} Envelope
// @Router      /api/clients/export [get]
func (h *ClientHTTPHandler) Export(c echo.Context) error {
	clients, err := h.clientSvc.FindAll(c.Request().Context())
	if err != nil {
		return err
	}

	path := filepath.Join(h.exportDir, fmt.Sprintf("clients-%s.csv", uuid.NewString()))
	defer h.remove(path)

	if err := h.writeFile(path, clients); err != nil {
		return apperrors.NewSerializationErr(err)
	}

	c.Response().Header().Set(echo.HeaderContentType, csvContentType)
	return c.Attachment(path, export.FileName)
}

func (h *ClientHTTPHandler) writeFile(path string, clients []*model.Client) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}

	if err := export.WriteCSV(f, clients); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (h *ClientHTTPHandler) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("failed to remove export file")
	}
}
