package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/handlers/render"
	"github.com/nvoropaev/authkeeper/internal/handlers/userctx"
	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/service/todo"
)

type todoResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTodoResponse(t models.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// renderTodoError maps service errors to responses shared by every todo handler
func renderTodoError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTodoNotFound):
		render.ServiceError(w, "Todo not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	default:
		l.Error("todo request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func todoIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Todo not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func handleCreateTodo(todos todoService, l logger.Logger) http.Handler {
	type request struct {
		Title       string `json:"title" validate:"required,min=1,max=200"`
		Description string `json:"description" validate:"max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		created, err := todos.Create(r.Context(), user, data.Title, data.Description)
		if err != nil {
			renderTodoError(w, l, err)
			return
		}

		render.JSONWithStatus(w, toTodoResponse(created), http.StatusCreated)
	})
}

func handleListTodos(todos todoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		list, err := todos.List(r.Context(), user)
		if err != nil {
			renderTodoError(w, l, err)
			return
		}

		response := make([]todoResponse, 0, len(list))
		for _, t := range list {
			response = append(response, toTodoResponse(t))
		}

		render.JSON(w, response)
	})
}

func handleGetTodo(todos todoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoIDFromPath(w, r)
		if !ok {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		found, err := todos.Get(r.Context(), user, id)
		if err != nil {
			renderTodoError(w, l, err)
			return
		}

		render.JSON(w, toTodoResponse(found))
	})
}

func handleUpdateTodo(todos todoService, l logger.Logger) http.Handler {
	type request struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		Done        *bool   `json:"done"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoIDFromPath(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		updated, err := todos.Update(r.Context(), user, id, todo.UpdateParams{
			Title:       data.Title,
			Description: data.Description,
			Done:        data.Done,
		})
		if err != nil {
			renderTodoError(w, l, err)
			return
		}

		render.JSON(w, toTodoResponse(updated))
	})
}

func handleDeleteTodo(todos todoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoIDFromPath(w, r)
		if !ok {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		if err := todos.Delete(r.Context(), user, id); err != nil {
			renderTodoError(w, l, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
