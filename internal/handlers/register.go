package handlers

import (
	"net/http"
	"strings"

	"tareas-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService}
}

type RegisteredUserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid registration payload",
			"details": err.Error(),
		})
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisteredUserResponse{
		ID:    user.ID,
		Email: user.Email,
	})
}
