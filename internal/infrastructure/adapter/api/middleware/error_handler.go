package middleware

import (
	"net/http"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorTemplate is the view rendered for unhandled faults
const ErrorTemplate = "error.html"

// ErrorHandler middleware recovers from panics and renders the error page
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": GetRequestID(c),
					"user_agent": c.Request.UserAgent(),
				})

				if c.Writer.Written() {
					c.Abort()
					return
				}
				renderErrorPage(c, errs.ErrInternalServer)
			}
		}()

		c.Next()
	}
}

// RenderError logs err and responds with the error page and HTTP 500
func RenderError(c *gin.Context, logger coreport.Logger, message string, err error) {
	fields := map[string]any{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": GetRequestID(c),
		"error_code": errs.ErrorCode(err),
		"error":      err,
	}
	if session, ok := CurrentSession(c); ok {
		fields["user_id"] = session.UserID
	}
	logger.Error(message, fields)

	_ = c.Error(err)
	renderErrorPage(c, err)
}

func renderErrorPage(c *gin.Context, err error) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusInternalServerError, ErrorTemplate, dto.ErrorPage{
		Code:      errs.ErrorCode(err),
		Message:   "An error occurred while processing your request.",
		RequestID: GetRequestID(c),
	})
	c.Abort()
}
