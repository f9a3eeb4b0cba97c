package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fendylo/study-snap/internal/docstore"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps store lookup failures to 404 and everything else
// to a 500 without leaking internals to the client.
func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, docstore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	respondError(c, http.StatusInternalServerError, "internal error")
}
