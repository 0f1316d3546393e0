package handlers

import (
	"errors"
	"net/http"

	"tareas-api/internal/services"
	"tareas-api/internal/stores"

	"github.com/gin-gonic/gin"
)

// handleDomainError maps the service/store error taxonomy onto HTTP.
// Anything unrecognized is a 500; authorization and validation failures
// are never retried or masked.
func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stores.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task does not exist",
		})
	case errors.Is(err, stores.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "user_not_found",
			"message": "No registered user with that email",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You do not have permission to perform this operation",
		})
	case errors.Is(err, services.ErrCannotUnassignCreator):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "cannot_unassign_creator",
			"message": "The task creator cannot be unassigned",
		})
	case errors.Is(err, stores.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "email_taken",
			"message": "Email is already registered",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process request",
		})
	}
}
