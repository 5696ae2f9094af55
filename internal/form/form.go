// Package form validates the task form of the web application and turns it
// into API requests.
package form

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskapi/internal/client"
	"taskapi/internal/model"
	"taskapi/internal/schema"
)

// TaskForm holds the raw values posted by the create and edit forms.
type TaskForm struct {
	Title       string `form:"title" validate:"required,max=100"`
	Description string `form:"description" validate:"max=500"`
	Status      string `form:"status" validate:"oneof=TODO IN_PROGRESS DONE"`
	Priority    string `form:"priority" validate:"oneof=LOW MEDIUM HIGH"`
	DueDate     string `form:"dueDate" validate:"datetime_local"`
}

// Submission is a validated form ready to be sent. Nil optional fields mean
// the value is empty.
type Submission struct {
	Title       string
	Description *string
	Status      model.Status
	Priority    model.Priority
	DueDate     *string
}

// New returns an empty form with the default status and priority selected.
func New() TaskForm {
	return TaskForm{
		Status:   string(model.StatusTodo),
		Priority: string(model.PriorityMedium),
	}
}

// FromTask prefills the form for editing. The due date is shown in local time.
func FromTask(task client.Task) TaskForm {
	f := TaskForm{
		Title:    task.Title,
		Status:   string(task.Status),
		Priority: string(task.Priority),
	}
	if task.Description != nil {
		f.Description = *task.Description
	}
	if task.DueDate != nil {
		f.DueDate = task.DueDate.In(time.Local).Format(schema.LocalLayout)
	}
	return f
}

// Validate checks the form without transforming it.
func (f TaskForm) Validate() error {
	return schema.Check(f, Message)
}

// Submission validates the form and normalizes it: the due date becomes an
// ISO 8601 UTC timestamp and empty optional fields become nil.
func (f TaskForm) Submission() (Submission, error) {
	if err := f.Validate(); err != nil {
		return Submission{}, err
	}

	s := Submission{
		Title:    f.Title,
		Status:   model.Status(f.Status),
		Priority: model.Priority(f.Priority),
	}
	if f.Description != "" {
		description := f.Description
		s.Description = &description
	}
	if f.DueDate != "" {
		dueDate, err := schema.ParseLocal(f.DueDate)
		if err != nil {
			return Submission{}, err
		}
		iso := schema.FormatTimestamp(dueDate)
		s.DueDate = &iso
	}
	return s, nil
}

// Input builds a create request.
func (s Submission) Input() client.TaskInput {
	return client.TaskInput{
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		Priority:    s.Priority,
		DueDate:     s.DueDate,
	}
}

// Update builds an update request carrying every field, so emptied optional
// fields are cleared.
func (s Submission) Update() client.TaskUpdate {
	title, status, priority := s.Title, s.Status, s.Priority
	update := client.TaskUpdate{
		Title:       &title,
		Status:      &status,
		Priority:    &priority,
		Description: schema.Null(),
		DueDate:     schema.Null(),
	}
	if s.Description != nil {
		update.Description = schema.String(*s.Description)
	}
	if s.DueDate != nil {
		update.DueDate = schema.String(*s.DueDate)
	}
	return update
}

// Message renders the messages shown next to form fields.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "title" {
			return "Title is required"
		}
		return "Required"
	case "max":
		return fmt.Sprintf("Maximum %s characters", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		return fmt.Sprintf("Invalid enum value. Expected '%s', received '%v'",
			strings.Join(options, "' | '"), fe.Value())
	case "datetime_local":
		return "Invalid date"
	}
	return "Invalid value"
}
