package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskapi/internal/model"
)

// TaskChanges is a partial update. Nil pointers leave the column untouched;
// the Set flags mark nullable columns that should be written even when nil.
type TaskChanges struct {
	Title          *string
	Status         *model.Status
	Priority       *model.Priority
	SetDescription bool
	Description    *string
	SetDueDate     bool
	DueDate        *time.Time
}

func (c TaskChanges) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Status != nil {
		cols["status"] = string(*c.Status)
	}
	if c.Priority != nil {
		cols["priority"] = string(*c.Priority)
	}
	if c.SetDescription {
		cols["description"] = c.Description
	}
	if c.SetDueDate {
		cols["due_date"] = c.DueDate
	}
	return cols
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, changes TaskChanges) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Task, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task, assigning its id and both timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := r.db.NowFunc()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// List returns every task, most recently created first.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// Update applies changes to an existing task and returns its new state.
// updated_at always moves forward by at least one millisecond, the precision
// timestamps are rendered with, even when the clock has not.
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, changes TaskChanges) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		cols := changes.columns()
		cols["updated_at"] = r.nextUpdatedAt(task.UpdatedAt)

		result := tx.Model(&model.Task{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}

		task = model.Task{}
		return tx.First(&task, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

// Delete removes a task and returns the state it had before removal.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) nextUpdatedAt(prev time.Time) time.Time {
	now := r.db.NowFunc()
	floor := prev.Truncate(time.Millisecond).Add(time.Millisecond)
	if now.Before(floor) {
		now = floor
	}
	return now
}
