package handlers

import (
	"net/http"
	"strconv"

	"tareas-api/internal/middleware"
	"tareas-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type TaskInput struct {
	Titulo      string `json:"titulo" binding:"required"`
	Descripcion string `json:"descripcion"`
	Completada  bool   `json:"completada"`
}

type AssigneeInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return
	}

	var input TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid task payload",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.Create(h.db, actorID, input.Titulo, input.Descripcion, input.Completada)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return
	}

	tasks, err := h.taskService.List(h.db, actorID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	actorID, taskID, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(h.db, actorID, taskID)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actorID, taskID, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	var input TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid task payload",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.Update(h.db, actorID, taskID, input.Titulo, input.Descripcion, input.Completada)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actorID, taskID, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(h.db, actorID, taskID); err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) AssignTask(c *gin.Context) {
	actorID, taskID, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	var input AssigneeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "A valid assignee email is required",
		})
		return
	}

	task, err := h.taskService.Assign(h.db, actorID, taskID, input.Email)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UnassignTask(c *gin.Context) {
	actorID, taskID, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	var input AssigneeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "A valid assignee email is required",
		})
		return
	}

	task, err := h.taskService.Unassign(h.db, actorID, taskID, input.Email)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) actorAndTask(c *gin.Context) (uint, uint, bool) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return 0, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task does not exist",
		})
		return 0, 0, false
	}
	return actorID, uint(taskID), true
}
