package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/repository"
)

// TodoService enforces ownership on every todo access
// "Who are you" (unauthorized) is the gate's failure, "may you touch
// this one" (forbidden) is ours: the two are never mixed up
type TodoService struct {
	todoRepo repository.TodoRepo
}

func NewService(todoRepo repository.TodoRepo) (*TodoService, error) {
	if todoRepo == nil {
		return nil, errors.New("todo repo must not be nil")
	}

	return &TodoService{todoRepo: todoRepo}, nil
}

func (s *TodoService) Create(ctx context.Context, owner models.User, title string, description string) (models.Todo, error) {
	todo, err := s.todoRepo.Create(ctx, models.Todo{
		UserID:      owner.ID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return models.Todo{}, fmt.Errorf("can't create todo. Err: %w", err)
	}

	return todo, nil
}

func (s *TodoService) List(ctx context.Context, owner models.User) ([]models.Todo, error) {
	return s.todoRepo.ListByUser(ctx, owner.ID)
}

func (s *TodoService) Get(ctx context.Context, caller models.User, todoID uuid.UUID) (models.Todo, error) {
	todo, err := s.todoRepo.Get(ctx, todoID)
	if err != nil {
		return models.Todo{}, err
	}

	if todo.UserID != caller.ID {
		return models.Todo{}, apperrors.ErrForbidden
	}

	return todo, nil
}

// UpdateParams carries only fields to change, nil leaves the field as is
type UpdateParams struct {
	Title       *string
	Description *string
	Done        *bool
}

func (s *TodoService) Update(ctx context.Context, caller models.User, todoID uuid.UUID, params UpdateParams) (models.Todo, error) {
	todo, err := s.Get(ctx, caller, todoID)
	if err != nil {
		return models.Todo{}, err
	}

	if params.Title != nil {
		todo.Title = *params.Title
	}
	if params.Description != nil {
		todo.Description = *params.Description
	}
	if params.Done != nil {
		todo.Done = *params.Done
	}

	return s.todoRepo.Update(ctx, todo)
}

func (s *TodoService) Delete(ctx context.Context, caller models.User, todoID uuid.UUID) error {
	// Ownership first: deleting someone else's todo is forbidden,
	// not silently reported as not found
	if _, err := s.Get(ctx, caller, todoID); err != nil {
		return err
	}

	return s.todoRepo.Delete(ctx, todoID)
}
