package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders a generic 500 response for errors that handlers
// attach with c.Error rather than rendering inline. The login flow forwards
// its unexpected failures here; signup renders everything on the form.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		for _, e := range c.Errors {
			log.Printf("request error: %s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		}

		if strings.Contains(c.GetHeader("Accept"), "application/json") {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
