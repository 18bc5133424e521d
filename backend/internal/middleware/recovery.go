package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const panicPage = `<!doctype html><title>taskify</title><p>Something went wrong. <a href="/dashboard">Back to your tasks</a></p>`

// RecoveryWithLog turns a handler panic into a 500. API clients get the
// usual {"error": ...} body; browsers asking for HTML get a short page.
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("💥 panic recovered on %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, rec, debug.Stack())
				_ = c.Error(fmt.Errorf("panic: %v", rec))

				if c.Writer.Written() {
					c.Abort()
					return
				}
				if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
					c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(panicPage))
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
