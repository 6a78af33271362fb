package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"library-reservation-backend/internal/model"
	"library-reservation-backend/internal/mw"
)

// suggestionLimit caps the live-search suggestion list.
const suggestionLimit = 5

func searchScope(query string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(query) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(genre) LIKE ?",
			pattern, pattern, pattern,
		)
	}
}

// ListBooks handles GET /api/books with optional case-insensitive substring
// search and exact genre filter.
func (h *Handler) ListBooks(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context()).Model(&model.Book{})

	if search := c.Query("search"); search != "" {
		db = db.Scopes(searchScope(search))
	}
	if genre := c.Query("genre"); genre != "" {
		db = db.Where("genre = ?", genre)
	}

	var books []model.Book
	if err := db.Order("title").Find(&books).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// SuggestBooks handles GET /api/books/suggest for the live search bar.
func (h *Handler) SuggestBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": []model.Book{}})
		return
	}

	var books []model.Book
	err := h.store.DB().WithContext(c.Request.Context()).
		Scopes(searchScope(query)).
		Limit(suggestionLimit).
		Find(&books).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": books})
}

// ListGenres handles GET /api/genres, the distinct sorted genre list for the
// filter dropdown.
func (h *Handler) ListGenres(c *gin.Context) {
	var genres []string
	err := h.store.DB().WithContext(c.Request.Context()).
		Model(&model.Book{}).
		Distinct("genre").
		Order("genre").
		Pluck("genre", &genres).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// MyBook handles GET /api/books/mine: the student's active book, if any,
// with its remaining-time or late-fee info.
func (h *Handler) MyBook(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.SweepBooks(ctx, h.svc.Now()); err != nil {
		respondError(c, err)
		return
	}

	studentID := c.GetString(mw.CtxStudentID)
	var books []model.Book
	err := h.store.DB().WithContext(ctx).
		Where("status IN ? AND reserved_by = ?",
			[]model.BookStatus{model.BookReserved, model.BookBorrowed}, studentID).
		Find(&books).Error
	if err != nil {
		respondError(c, err)
		return
	}

	if len(books) == 0 {
		c.JSON(http.StatusOK, gin.H{"book": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book":        books[0],
		"timing_info": h.svc.TimingFor(&books[0]),
	})
}

// ReserveBook handles POST /api/books/:book_id/reserve.
func (h *Handler) ReserveBook(c *gin.Context) {
	studentID := c.GetString(mw.CtxStudentID)
	if err := h.svc.ReserveBook(c.Request.Context(), studentID, c.Param("book_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book reserved"})
}

// CancelBookReservation handles POST /api/books/:book_id/cancel.
func (h *Handler) CancelBookReservation(c *gin.Context) {
	studentID := c.GetString(mw.CtxStudentID)
	if err := h.svc.CancelBookReservation(c.Request.Context(), studentID, c.Param("book_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled"})
}
