package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-reservation-backend/internal/auth"
	"library-reservation-backend/internal/reservation"
	"library-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	svc        *reservation.Service
	tokens     *auth.TokenIssuer
	bcryptCost int
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *reservation.Service, tokens *auth.TokenIssuer, bcryptCost int) *Handler {
	return &Handler{
		store:      s,
		svc:        svc,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// respondError maps a service error onto the HTTP taxonomy. Anything outside
// the taxonomy is a service-level failure and stays opaque to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
