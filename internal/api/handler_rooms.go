package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-reservation-backend/internal/mw"
)

// ListRooms handles GET /api/rooms: every room's status with tomorrow's
// reservations, and the next allocatable slot while the caller can still
// book one.
func (h *Handler) ListRooms(c *gin.Context) {
	tomorrow := h.svc.Tomorrow()
	statuses, err := h.svc.RoomStatuses(c.Request.Context(), tomorrow, c.GetString(mw.CtxStudentID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": statuses, "tomorrow": tomorrow})
}

type reserveRoomRequest struct {
	Date string `json:"date" binding:"required"`
}

// ReserveRoom handles POST /api/rooms/:room_id/reserve. The date must be
// tomorrow and the slot is auto-allocated.
func (h *Handler) ReserveRoom(c *gin.Context) {
	var req reserveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation date is required"})
		return
	}

	studentID := c.GetString(mw.CtxStudentID)
	res, err := h.svc.ReserveRoomForTomorrow(c.Request.Context(), studentID, c.Param("room_id"), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation": res})
}

// CancelRoomReservation handles POST /api/rooms/:room_id/cancel, removing
// the caller's own reservation in the room.
func (h *Handler) CancelRoomReservation(c *gin.Context) {
	studentID := c.GetString(mw.CtxStudentID)
	if err := h.svc.CancelOwnRoomReservation(c.Request.Context(), studentID, c.Param("room_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled"})
}
