package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/schema"
)

type TaskHandler struct {
	taskRepo repository.TaskRepositoryInterface
}

func NewTaskHandler(taskRepo repository.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo}
}

// CreateTaskRequest is the body of POST /tasks. Unknown fields are dropped.
type CreateTaskRequest struct {
	Title       string          `json:"title" validate:"required,max=100" minLength:"1" maxLength:"100" example:"Buy groceries"`
	Description *string         `json:"description" validate:"omitnil,max=500" maxLength:"500" example:"Milk, eggs, bread"`
	Status      *model.Status   `json:"status" validate:"omitnil,oneof=TODO IN_PROGRESS DONE" enums:"TODO,IN_PROGRESS,DONE" swaggertype:"string" default:"TODO"`
	Priority    *model.Priority `json:"priority" validate:"omitnil,oneof=LOW MEDIUM HIGH" enums:"LOW,MEDIUM,HIGH" swaggertype:"string" default:"MEDIUM"`
	DueDate     *string         `json:"dueDate" validate:"omitnil,iso8601" format:"date-time" example:"2025-10-31T00:00:00.000Z"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Absent fields are left
// unchanged; null or "" clears description and dueDate.
type UpdateTaskRequest struct {
	Title       *string               `json:"title" validate:"omitnil,min=1,max=100" minLength:"1" maxLength:"100"`
	Description schema.NullableString `json:"description" validate:"omitempty,max=500" swaggertype:"string" maxLength:"500"`
	Status      *model.Status         `json:"status" validate:"omitnil,oneof=TODO IN_PROGRESS DONE" enums:"TODO,IN_PROGRESS,DONE" swaggertype:"string"`
	Priority    *model.Priority       `json:"priority" validate:"omitnil,oneof=LOW MEDIUM HIGH" enums:"LOW,MEDIUM,HIGH" swaggertype:"string"`
	DueDate     schema.NullableString `json:"dueDate" validate:"omitempty,iso8601" swaggertype:"string" format:"date-time"`
}

func (r *CreateTaskRequest) toModel() (*model.Task, error) {
	task := &model.Task{
		Title:       r.Title,
		Description: r.Description,
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
	}
	if r.Status != nil {
		task.Status = *r.Status
	}
	if r.Priority != nil {
		task.Priority = *r.Priority
	}
	if r.DueDate != nil && *r.DueDate != "" {
		dueDate, err := schema.ParseTimestamp(*r.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &dueDate
	}
	return task, nil
}

func (r *UpdateTaskRequest) toChanges() (repository.TaskChanges, error) {
	changes := repository.TaskChanges{
		Title:    r.Title,
		Status:   r.Status,
		Priority: r.Priority,
	}
	if r.Description.Set {
		changes.SetDescription = true
		changes.Description = r.Description.Ptr()
	}
	if r.DueDate.Set {
		changes.SetDueDate = true
		if r.DueDate.Valid && r.DueDate.Value != "" {
			dueDate, err := schema.ParseTimestamp(r.DueDate.Value)
			if err != nil {
				return repository.TaskChanges{}, err
			}
			changes.DueDate = &dueDate
		}
	}
	return changes, nil
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task  body      CreateTaskRequest  true  "Task to create"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if !bindTaskRequest(c, &req) {
		return
	}

	task, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		respondError(c, "create", "", err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetAll godoc
// @Summary      Get all tasks
// @Description  Most recently created first.
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   TaskResponse
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	tasks, err := h.taskRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, "retrieve", "", err)
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary      Get a task by id
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"  format(uuid)
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, ok := h.findTask(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update godoc
// @Summary      Update a task
// @Description  Only the fields present in the body are changed.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Task ID"  format(uuid)
// @Param        task  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if !bindTaskRequest(c, &req) {
		return
	}

	changes, err := req.toChanges()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	task, ok := h.findTask(c)
	if !ok {
		return
	}

	updated, err := h.taskRepo.Update(c.Request.Context(), task.ID, changes)
	if err != nil {
		respondError(c, "update", c.Param("id"), err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(updated))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Returns the task as it was before deletion.
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"  format(uuid)
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	task, ok := h.findTask(c)
	if !ok {
		return
	}

	deleted, err := h.taskRepo.Delete(c.Request.Context(), task.ID)
	if err != nil {
		respondError(c, "delete", c.Param("id"), err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(deleted))
}

// findTask resolves the :id path parameter. An id that is not a UUID cannot
// exist, so it is reported as not found.
func (h *TaskHandler) findTask(c *gin.Context) (*model.Task, bool) {
	rawID := c.Param("id")
	taskID, err := uuid.Parse(rawID)
	if err != nil {
		respondError(c, "retrieve", rawID, repository.ErrTaskNotFound)
		return nil, false
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, "retrieve", rawID, err)
		return nil, false
	}
	return task, true
}

// bindTaskRequest binds the JSON body into req and validates it. An empty
// body binds as an empty object.
func bindTaskRequest(c *gin.Context, req interface{}) bool {
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return false
		}
	}

	if err := schema.Check(req, schema.APIMessage); err != nil {
		respondError(c, "validate", "", err)
		return false
	}
	return true
}
