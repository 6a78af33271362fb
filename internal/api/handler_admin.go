package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-reservation-backend/internal/model"
)

type bookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	Genre  string `json:"genre" binding:"required"`
}

// CreateBook handles POST /api/admin/books.
func (h *Handler) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, author and genre are required"})
		return
	}

	book := model.Book{
		ID:     uuid.NewString(),
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Status: model.BookAvailable,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&book).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"book": book})
}

// UpdateBook handles PUT /api/admin/books/:book_id, editing catalog fields
// only; status is driven by the lifecycle endpoints.
func (h *Handler) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, author and genre are required"})
		return
	}

	res := h.store.DB().WithContext(c.Request.Context()).
		Model(&model.Book{}).
		Where("id = ?", c.Param("book_id")).
		Updates(map[string]any{"title": req.Title, "author": req.Author, "genre": req.Genre})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book updated"})
}

// DeleteBook handles DELETE /api/admin/books/:book_id.
func (h *Handler) DeleteBook(c *gin.Context) {
	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.Book{}, "id = ?", c.Param("book_id"))
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

type activeBookResponse struct {
	model.Book
	TimingInfo any `json:"timing_info"`
}

// ActiveBooks handles GET /api/admin/books/active: every reserved or
// borrowed book with its timing info, for the loans tab.
func (h *Handler) ActiveBooks(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.SweepBooks(ctx, h.svc.Now()); err != nil {
		respondError(c, err)
		return
	}

	var books []model.Book
	err := h.store.DB().WithContext(ctx).
		Where("status IN ?", []model.BookStatus{model.BookReserved, model.BookBorrowed}).
		Order("title").
		Find(&books).Error
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]activeBookResponse, 0, len(books))
	for i := range books {
		response = append(response, activeBookResponse{
			Book:       books[i],
			TimingInfo: h.svc.TimingFor(&books[i]),
		})
	}
	c.JSON(http.StatusOK, gin.H{"books": response})
}

// MarkBorrowed handles POST /api/admin/books/:book_id/borrow.
func (h *Handler) MarkBorrowed(c *gin.Context) {
	if err := h.svc.MarkBorrowed(c.Request.Context(), c.Param("book_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book marked as borrowed"})
}

// MarkReturned handles POST /api/admin/books/:book_id/return.
func (h *Handler) MarkReturned(c *gin.Context) {
	if err := h.svc.MarkReturned(c.Request.Context(), c.Param("book_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book marked as returned"})
}

// ListStudents handles GET /api/admin/students, the non-admin account list
// for the reservation dropdown.
func (h *Handler) ListStudents(c *gin.Context) {
	var students []model.Student
	err := h.store.DB().WithContext(c.Request.Context()).
		Where("is_admin = ?", false).
		Order("id_number").
		Find(&students).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

type roomRequest struct {
	RoomName string `json:"room_name" binding:"required"`
}

// CreateRoom handles POST /api/admin/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name is required"})
		return
	}

	room := model.ConferenceRoom{ID: uuid.NewString(), RoomName: req.RoomName}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "room name already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// RoomsOverview handles GET /api/admin/rooms: statuses with the full
// reservation list, not just tomorrow's.
func (h *Handler) RoomsOverview(c *gin.Context) {
	statuses, err := h.svc.RoomStatuses(c.Request.Context(), "", "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": statuses})
}

type adminReservationRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

// AddRoomReservation handles POST /api/admin/rooms/:room_id/reservations:
// an exact-start placement on behalf of a student.
func (h *Handler) AddRoomReservation(c *gin.Context) {
	var req adminReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id, date and start_time are required"})
		return
	}

	res, err := h.svc.AdminAddRoomReservation(c.Request.Context(), req.StudentID, c.Param("room_id"), req.Date, req.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation": res})
}

// CancelRoomReservationByStudent handles
// DELETE /api/admin/rooms/:room_id/reservations/:student_id.
func (h *Handler) CancelRoomReservationByStudent(c *gin.Context) {
	err := h.svc.AdminCancelRoomReservation(c.Request.Context(), c.Param("room_id"), c.Param("student_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled"})
}
