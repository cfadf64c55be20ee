package handlers

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/monitoring"
	"github.com/umalmyha/leads/internal/validation"
	"net/http"
	"time"
)

// Envelope response codes
const (
	CodeOK         = 1
	CodeDuplicate  = -2
	CodeValidation = -5
	CodeInternal   = -100
)

// Envelope response texts
const (
	ResponseOK          = "OK"
	ResponseInvalidLead = "Invalid Lead"
	ResponseValidation  = "Validation error"
	ResponseInternal    = "Internal error"

	DescriptionDuplicate = "Duplicate"

	InfoDatabaseError = "Database error"
	InfoCSVError      = "CSV writing error"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Envelope struct {
	Code        int    `json:"code"`
	Response    string `json:"response"`
	Description string `json:"description,omitempty"`
	Info        any    `json:"info"`
	LeadID      *int64 `json:"leadId"`
	ProcessTime int    `json:"processTime"`
	Timestamp   string `json:"timestamp"`
}

type ErrorInfo struct {
	Error string `json:"error"`
}

func newEnvelope(code int, response string, info any) *Envelope {
	return &Envelope{
		Code:      code,
		Response:  response,
		Info:      info,
		Timestamp: time.Now().UTC().Format(timestampLayout),
	}
}

func createdEnvelope(leadID int64) *Envelope {
	env := newEnvelope(CodeOK, ResponseOK, []any{})
	env.LeadID = &leadID
	return env
}

func errorEnvelope(err error) (int, *Envelope) {
	var pldErr *validation.PayloadError
	var dsErr *apperrors.DatastoreErr
	var serErr *apperrors.SerializationErr
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &pldErr):
		return http.StatusBadRequest, newEnvelope(CodeValidation, ResponseValidation, pldErr.Violations())
	case errors.Is(err, apperrors.ErrDuplicateLead):
		env := newEnvelope(CodeDuplicate, ResponseInvalidLead, []any{})
		env.Description = DescriptionDuplicate
		return http.StatusBadRequest, env
	case errors.As(err, &dsErr):
		status := http.StatusInternalServerError
		if dsErr.Op == apperrors.OpInsert {
			status = http.StatusBadRequest
		}
		return status, newEnvelope(CodeInternal, ResponseInternal, ErrorInfo{Error: InfoDatabaseError})
	case errors.As(err, &serErr):
		return http.StatusInternalServerError, newEnvelope(CodeInternal, ResponseInternal, ErrorInfo{Error: InfoCSVError})
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if httpErr.Code < http.StatusInternalServerError {
			msg = fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, newEnvelope(CodeInternal, http.StatusText(httpErr.Code), ErrorInfo{Error: msg})
	default:
		return http.StatusInternalServerError, newEnvelope(CodeInternal, ResponseInternal, ErrorInfo{Error: ResponseInternal})
	}
}

// ErrorHandler renders any error returned by handlers as Envelope
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, env := errorEnvelope(err)

	req := c.Request()
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method": req.Method,
		"uri":    req.RequestURI,
		"status": status,
		"code":   env.Code,
	})

	switch env.Code {
	case CodeValidation:
		monitoring.LeadsTotal.WithLabelValues(monitoring.LeadRejected).Inc()
		entry.Info("lead rejected by validation")
	case CodeDuplicate:
		monitoring.LeadsTotal.WithLabelValues(monitoring.LeadDuplicate).Inc()
		entry.Info("duplicate lead rejected")
	default:
		var dsErr *apperrors.DatastoreErr
		if status < http.StatusInternalServerError && !errors.As(err, &dsErr) {
			entry.Warn("request failed")
			break
		}
		entry.Error("request failed")
		monitoring.CaptureError(err, map[string]any{"method": req.Method, "uri": req.RequestURI, "status": status})
	}

	// headers of a failed attachment must not leak into the envelope
	header := c.Response().Header()
	header.Del(echo.HeaderContentType)
	header.Del(echo.HeaderContentDisposition)

	var renderErr error
	if req.Method == http.MethodHead {
		renderErr = c.NoContent(status)
	} else {
		renderErr = c.JSON(status, env)
	}

	if renderErr != nil {
		logrus.WithError(renderErr).Error("failed to render error response")
	}
}
