package response

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success envelope. Meta is attached only when non-empty.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with 201 and data.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error converts err to an *appErrors.Error and sends it with its status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment streams data as a download named filename. rows is reported in
// X-Result-Count so clients can tell an empty export from a failed one.
func Attachment(c *gin.Context, filename, contentType string, rows int, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("X-Result-Count", fmt.Sprint(rows))
	c.Data(http.StatusOK, contentType, data)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
