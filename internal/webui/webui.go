// Package webui serves the server-rendered pages of the task application.
package webui

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskapi/internal/client"
	"taskapi/internal/form"
	"taskapi/internal/middleware"
	"taskapi/internal/model"
	"taskapi/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"statusLabel":   statusLabel,
	"priorityLabel": priorityLabel,
	"formatDate":    formatDate,
	"fieldError":    fieldError,
}).ParseFS(templateFS, "templates/*.tmpl"))

type Server struct {
	queries *client.QueryClient
}

type pageData struct {
	Title string
	Error string

	// Task form
	Action     string
	Submit     string
	Cancel     bool
	Form       form.TaskForm
	Errors     *schema.ValidationError
	Statuses   []model.Status
	Priorities []model.Priority

	// Index
	Tasks     []client.Task
	LoadError bool

	// Delete confirmation
	Task client.Task
}

func NewServer(queries *client.QueryClient) *Server {
	return &Server{queries: queries}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.SetHTMLTemplate(templates)

	r.GET("/", s.index)
	r.POST("/tasks", s.create)
	r.GET("/tasks/:id/edit", s.edit)
	r.POST("/tasks/:id", s.update)
	r.GET("/tasks/:id/delete", s.confirmDelete)
	r.POST("/tasks/:id/delete", s.delete)

	return r
}

func newFormPage(title string, f form.TaskForm) pageData {
	return pageData{
		Title:      title,
		Action:     "/tasks",
		Submit:     "Create task",
		Form:       f,
		Statuses:   model.Statuses,
		Priorities: model.Priorities,
	}
}

func (s *Server) index(c *gin.Context) {
	s.renderIndex(c, http.StatusOK, newFormPage("Tasks", form.New()))
}

func (s *Server) renderIndex(c *gin.Context, status int, data pageData) {
	tasks, err := s.queries.Tasks(c.Request.Context())
	if err != nil {
		log.Printf("[web] failed to load tasks: %v", err)
		data.LoadError = true
	}
	data.Tasks = tasks
	c.HTML(status, "index.tmpl", data)
}

func (s *Server) create(c *gin.Context) {
	var f form.TaskForm
	if err := c.ShouldBind(&f); err != nil {
		data := newFormPage("Tasks", form.New())
		data.Error = "Invalid form submission"
		s.renderIndex(c, http.StatusBadRequest, data)
		return
	}

	data := newFormPage("Tasks", f)
	submission, err := f.Submission()
	if err != nil {
		data.Errors = asValidationError(err)
		s.renderIndex(c, http.StatusBadRequest, data)
		return
	}

	task, err := s.queries.CreateTask(c.Request.Context(), submission.Input())
	if err != nil {
		log.Printf("[web] failed to create task: %v", err)
		data.Errors, data.Error = mutationError(err, "Failed to create task")
		s.renderIndex(c, http.StatusBadGateway, data)
		return
	}

	log.Printf("[web] created task %s", task.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) edit(c *gin.Context) {
	task, ok := s.findTask(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "edit.tmpl", newEditPage(task.ID.String(), form.FromTask(*task)))
}

func newEditPage(id string, f form.TaskForm) pageData {
	data := newFormPage("Edit task", f)
	data.Action = "/tasks/" + id
	data.Submit = "Update"
	data.Cancel = true
	return data
}

func (s *Server) update(c *gin.Context) {
	id := c.Param("id")

	var f form.TaskForm
	if err := c.ShouldBind(&f); err != nil {
		data := newEditPage(id, f)
		data.Error = "Invalid form submission"
		c.HTML(http.StatusBadRequest, "edit.tmpl", data)
		return
	}

	data := newEditPage(id, f)
	submission, err := f.Submission()
	if err != nil {
		data.Errors = asValidationError(err)
		c.HTML(http.StatusBadRequest, "edit.tmpl", data)
		return
	}

	if _, err := s.queries.UpdateTask(c.Request.Context(), id, submission.Update()); err != nil {
		if client.IsNotFound(err) {
			renderNotFound(c)
			return
		}
		log.Printf("[web] failed to update task %s: %v", id, err)
		data.Errors, data.Error = mutationError(err, "Failed to update task")
		c.HTML(http.StatusBadGateway, "edit.tmpl", data)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) confirmDelete(c *gin.Context) {
	task, ok := s.findTask(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "delete.tmpl", pageData{Title: "Delete task", Task: *task})
}

func (s *Server) delete(c *gin.Context) {
	id := c.Param("id")

	task, err := s.queries.DeleteTask(c.Request.Context(), id)
	if err != nil {
		if client.IsNotFound(err) {
			renderNotFound(c)
			return
		}
		log.Printf("[web] failed to delete task %s: %v", id, err)
		c.HTML(http.StatusBadGateway, "index.tmpl", pageData{
			Title:      "Tasks",
			Error:      "Failed to delete task",
			Action:     "/tasks",
			Submit:     "Create task",
			Form:       form.New(),
			Statuses:   model.Statuses,
			Priorities: model.Priorities,
			LoadError:  true,
		})
		return
	}

	log.Printf("[web] deleted task %s", task.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

// findTask looks the task up in the cached list, the same data the index
// page shows.
func (s *Server) findTask(c *gin.Context) (*client.Task, bool) {
	id := c.Param("id")

	tasks, err := s.queries.Tasks(c.Request.Context())
	if err != nil {
		log.Printf("[web] failed to load tasks: %v", err)
		data := newFormPage("Tasks", form.New())
		data.LoadError = true
		c.HTML(http.StatusBadGateway, "index.tmpl", data)
		return nil, false
	}

	if taskID, err := uuid.Parse(id); err == nil {
		for i := range tasks {
			if tasks[i].ID == taskID {
				return &tasks[i], true
			}
		}
	}

	renderNotFound(c)
	return nil, false
}

func renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.tmpl", pageData{Title: "Task not found"})
}

func asValidationError(err error) *schema.ValidationError {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return &schema.ValidationError{}
}

// mutationError shows API validation details next to the fields and any
// other failure as a banner.
func mutationError(err error, banner string) (*schema.ValidationError, string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		return &schema.ValidationError{Fields: apiErr.Details}, ""
	}
	return nil, banner
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusTodo:
		return "To do"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusDone:
		return "Done"
	}
	return string(s)
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "Low"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityHigh:
		return "High"
	}
	return string(p)
}

func formatDate(t time.Time) string {
	return t.In(time.Local).Format("Jan 2, 2006")
}

func fieldError(errs *schema.ValidationError, field string) string {
	if errs == nil {
		return ""
	}
	return errs.Field(field)
}
