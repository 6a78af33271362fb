package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"library-reservation-backend/internal/auth"
	"library-reservation-backend/internal/model"
)

type registerRequest struct {
	IDNumber        string `json:"id_number" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Register creates a new (non-admin) student account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	// No existence pre-check: the primary key enforces uniqueness, so a
	// duplicate registration racing past any check still lands here.
	student := model.Student{IDNumber: req.IDNumber, PasswordHash: hash}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "ID number already exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id_number": student.IDNumber})
}

type loginRequest struct {
	IDNumber string `json:"id_number" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.store.GetStudent(c.Request.Context(), req.IDNumber)
	if err != nil || !auth.CheckPassword(student.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(student.IDNumber, student.IsAdmin, h.svc.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "is_admin": student.IsAdmin})
}
