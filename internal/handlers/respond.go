package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
)

// respondError maps a service error to its HTTP status. Errors the service
// layer did not classify become an opaque 500.
func respondError(ctx *gin.Context, err error) {
	status := apperrors.Status(err)

	if status == http.StatusInternalServerError {
		log.Printf("Unexpected error: %v", err)
		ctx.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}
