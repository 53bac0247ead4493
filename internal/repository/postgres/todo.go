package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
)

type TodoRepo struct {
	DB DBTX
}

const createTodo = `-- name: CreateTodo
INSERT INTO todos (id, user_id, title, description, done)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, title, description, done, created_at, updated_at
`

func (r *TodoRepo) Create(ctx context.Context, todo models.Todo) (models.Todo, error) {
	id := todo.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTodo, id, todo.UserID, todo.Title, todo.Description, todo.Done)
	created, err := pgx.CollectOneRow(rows, rowToTodo)
	if err != nil {
		return created, dbErr(err)
	}
	return created, nil
}

const getTodo = `-- name: GetTodo
SELECT id, user_id, title, description, done, created_at, updated_at
FROM todos
WHERE id = $1
`

func (r *TodoRepo) Get(ctx context.Context, todoID uuid.UUID) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, getTodo, todoID)
	todo, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return todo, nil
	case errors.Is(err, pgx.ErrNoRows):
		return todo, apperrors.ErrTodoNotFound
	default:
		return todo, dbErr(err)
	}
}

const listTodosByUser = `-- name: ListTodosByUser
SELECT id, user_id, title, description, done, created_at, updated_at
FROM todos
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *TodoRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Todo, error) {
	rows, _ := r.DB.Query(ctx, listTodosByUser, userID)
	todos, err := pgx.CollectRows(rows, rowToTodo)
	if err != nil {
		return nil, dbErr(err)
	}
	return todos, nil
}

const updateTodo = `-- name: UpdateTodo
UPDATE todos
SET title = $2, description = $3, done = $4, updated_at = now()
WHERE id = $1
RETURNING id, user_id, title, description, done, created_at, updated_at
`

func (r *TodoRepo) Update(ctx context.Context, todo models.Todo) (models.Todo, error) {
	rows, _ := r.DB.Query(ctx, updateTodo, todo.ID, todo.Title, todo.Description, todo.Done)
	updated, err := pgx.CollectOneRow(rows, rowToTodo)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrTodoNotFound
	default:
		return updated, dbErr(err)
	}
}

const deleteTodo = `-- name: DeleteTodo
DELETE FROM todos
WHERE id = $1
`

func (r *TodoRepo) Delete(ctx context.Context, todoID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTodo, todoID)
	if err != nil {
		return dbErr(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}
	return nil
}

func rowToTodo(row pgx.CollectableRow) (models.Todo, error) {
	var t models.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Done, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
