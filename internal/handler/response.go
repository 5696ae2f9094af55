package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/schema"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error" example:"Validation failed"`
	Details []schema.FieldError `json:"details,omitempty"`
}

// TaskResponse is the public JSON representation of a task.
type TaskResponse struct {
	ID          string  `json:"id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Title       string  `json:"title" example:"Buy groceries"`
	Description *string `json:"description" example:"Milk, eggs, bread"`
	Status      string  `json:"status" enums:"TODO,IN_PROGRESS,DONE" example:"TODO"`
	Priority    string  `json:"priority" enums:"LOW,MEDIUM,HIGH" example:"MEDIUM"`
	DueDate     *string `json:"dueDate" format:"date-time" example:"2025-10-31T00:00:00.000Z"`
	CreatedAt   string  `json:"createdAt" format:"date-time" example:"2025-10-01T12:00:00.000Z"`
	UpdatedAt   string  `json:"updatedAt" format:"date-time" example:"2025-10-02T12:00:00.000Z"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		CreatedAt:   schema.FormatTimestamp(task.CreatedAt),
		UpdatedAt:   schema.FormatTimestamp(task.UpdatedAt),
	}

	if task.DueDate != nil {
		dueDate := schema.FormatTimestamp(*task.DueDate)
		response.DueDate = &dueDate
	}

	return response
}

// respondError maps an error to its status code. action names the failed
// operation for 500 responses.
func respondError(c *gin.Context, action string, id string, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: verr.Fields})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("Task with id %s not found", id)})
	default:
		log.Printf("❌ Failed to %s task: %v", action, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprintf("Failed to %s task", action)})
	}
}
