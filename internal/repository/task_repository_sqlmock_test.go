package repository_test

import (
	"context"
	"testing"
	"time"

	"taskapi/internal/model"
	"taskapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var taskColumns = []string{"id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at"}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestTaskRepository_Postgres_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	task := newTask("Buy milk")

	// Ожидаем INSERT с идентификатором, сгенерированным на стороне приложения
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "tasks"`).
		WithArgs(sqlmock.AnyArg(), "Buy milk", nil, "TODO", "MEDIUM", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := repo.Create(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_CreateError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "tasks"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newTask("Broken"))

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_ListOrdersByCreatedAt(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "tasks" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(uuid.New().String(), "second", nil, "TODO", "LOW", nil, now, now).
			AddRow(uuid.New().String(), "first", "notes", "DONE", "HIGH", now, now.Add(-time.Hour), now))

	// Act
	tasks, err := repo.List(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)
	assert.Equal(t, model.PriorityHigh, tasks[1].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	task, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_GetByID_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1`).
		WillReturnError(assert.AnError)

	task, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_Delete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(id.String(), "Temporary", nil, "TODO", "MEDIUM", nil, now, now))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	deleted, err := repo.Delete(context.Background(), id)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, id, deleted.ID)
	assert.Equal(t, "Temporary", deleted.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Postgres_DeleteNotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	deleted, err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
