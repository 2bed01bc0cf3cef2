package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Lifecycle endpoints answer with a flat JSON envelope:
// {"success": true, ...payload} on success, {"error": "...", ...details}
// with a non-2xx status on failure. Webhook relays key retries off the
// status code, so error classes must map to stable statuses.

// OK writes a 200 envelope merging payload fields next to "success".
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error writes an error envelope with the given status and message,
// merging optional detail fields next to "error".
func Error(c *gin.Context, status int, msg string, details gin.H) {
	body := gin.H{"error": msg}
	for k, v := range details {
		body[k] = v
	}
	c.JSON(status, body)
}
