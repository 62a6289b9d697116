package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/analysis"
	"powersimdata/internal/api/models"
	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/scenario"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondErr maps a domain error onto an HTTP status and error code.
func respondErr(c *gin.Context, err error) {
	var invalid *data.InvalidFieldError
	var access *data.AccessError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_FIELD",
				Message: err.Error(),
				Details: map[string]any{"allowed": invalid.Allowed},
			},
		})
	case errors.Is(err, grid.ErrUnknownInterconnect):
		respondError(c, http.StatusBadRequest, "INVALID_INTERCONNECT", err.Error())
	case errors.Is(err, grid.ErrUnknownSource), errors.Is(err, grid.ErrUnknownEngine):
		respondError(c, http.StatusBadRequest, "INVALID_SOURCE", err.Error())
	case errors.Is(err, grid.ErrEngineNotImplemented):
		respondError(c, http.StatusNotImplemented, "NOT_IMPLEMENTED", err.Error())
	case errors.Is(err, grid.ErrUnknownField):
		respondError(c, http.StatusNotFound, "UNKNOWN_FIELD", err.Error())
	case errors.Is(err, analysis.ErrInvalidArea):
		respondError(c, http.StatusBadRequest, "INVALID_AREA", err.Error())
	case errors.Is(err, analysis.ErrNotProfileResource), errors.Is(err, analysis.ErrNoCapacity):
		respondError(c, http.StatusBadRequest, "INVALID_RESOURCE", err.Error())
	case errors.Is(err, scenario.ErrNotFound):
		respondError(c, http.StatusNotFound, "SCENARIO_NOT_FOUND", err.Error())
	case errors.Is(err, data.ErrNotFoundAnywhere), errors.Is(err, scenario.ErrNoData):
		respondError(c, http.StatusNotFound, "DATA_NOT_FOUND", err.Error())
	case errors.As(err, &access):
		respondError(c, http.StatusBadGateway, access.Code, err.Error())
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
