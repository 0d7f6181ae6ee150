package handlers

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes, shared across the REST surface.
// Authentication sub-codes (NO_TOKEN etc.) are emitted by the middleware.
const (
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeValidation        = "VALIDATION_ERROR"
	CodePriceMismatch     = "PRICE_MISMATCH"
	CodeInternal          = "INTERNAL"
)

// fail writes the uniform error body. Persistence faults go through
// failInternal so internals never leak to the caller.
func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func failInternal(c *gin.Context, msg string) {
	fail(c, 500, CodeInternal, msg)
}
