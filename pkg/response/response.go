package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/pkg/apperr"
)

// Failure is the error envelope: {"success": false, "error": "..."}.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func success(fields gin.H) gin.H {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return body
}

// OK sends a 200 JSON response; fields are merged next to "success".
func OK(c *gin.Context, fields gin.H) {
	c.JSON(http.StatusOK, success(fields))
}

// Created sends a 201 JSON response.
func Created(c *gin.Context, fields gin.H) {
	c.JSON(http.StatusCreated, success(fields))
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Failure{Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Failure{Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Failure{Error: err})
}

// MethodNotAllowed sends 405.
func MethodNotAllowed(c *gin.Context) {
	Error(c, nil, apperr.New(apperr.KindMethodNotAllowed, "Method not allowed"))
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Failure{Error: err})
}

// Error maps err onto its status code and writes the failure envelope.
// Server-side failures are logged with their cause; the client only sees the message.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperr.As(err)
	if appErr == nil {
		if logger != nil {
			logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		}
		Internal(c, "internal server error")
		return
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error(appErr.Message,
			zap.String("kind", string(appErr.Kind)),
			zap.Error(appErr.Err),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(status, Failure{Error: appErr.Message})
}
