package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

// Envelope is the uniform JSON body for every API response.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Meta       map[string]string  `json:"meta,omitempty"`
}

// JSON writes a success payload.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

// OK writes a 200 payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created writes a 201 payload.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Paginated writes a 200 payload with pagination metadata.
func Paginated(c *gin.Context, data interface{}, pagination *models.Pagination) {
	c.JSON(http.StatusOK, Envelope{Data: data, Pagination: pagination})
}

// WithMeta writes a 200 payload carrying extra metadata, such as cache
// provenance for reports.
func WithMeta(c *gin.Context, data interface{}, meta map[string]string) {
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: meta})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error normalises any error into the envelope with its mapped status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.AbortWithStatusJSON(appErr.Status, Envelope{Error: appErr})
}
