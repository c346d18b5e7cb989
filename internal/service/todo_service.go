package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go-todo-api/internal/model"
	"go-todo-api/internal/util"
	"go-todo-api/pkg/apierror"
)

type TodoStore interface {
	ListByOwner(ctx context.Context, ownerID string, titleFilter string) ([]model.Todo, error)
	GetByIDAndOwner(ctx context.Context, id int64, ownerID string) (model.Todo, error)
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	Update(ctx context.Context, t model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int64, ownerID string) error
}

// TodoService never lets a caller see or touch another owner's todos. Every
// store call carries the owner id.
type TodoService struct {
	todos TodoStore
	now   func() time.Time
}

func NewTodoService(todos TodoStore) *TodoService {
	return &TodoService{todos: todos, now: time.Now}
}

func (s *TodoService) List(ctx context.Context, ownerID string) ([]model.Todo, error) {
	return s.todos.ListByOwner(ctx, ownerID, "")
}

func (s *TodoService) Search(ctx context.Context, ownerID string, title string) ([]model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierror.New("BAD_REQUEST", "No search parameter provided", "", http.StatusBadRequest)
	}
	return s.todos.ListByOwner(ctx, ownerID, title)
}

func (s *TodoService) Get(ctx context.Context, ownerID string, id int64) (model.Todo, error) {
	return s.todos.GetByIDAndOwner(ctx, id, ownerID)
}

func (s *TodoService) Create(ctx context.Context, ownerID string, req model.CreateTodoRequest) (model.Todo, error) {
	fields := apierror.FieldErrors{}
	title := normalizeTitle(fields, req.Title)
	description := normalizeDescription(fields, req.Description)
	if err := fields.Err(); err != nil {
		return model.Todo{}, err
	}

	now := s.now().UTC()
	todo := model.Todo{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	created, err := s.todos.Create(ctx, todo)
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

// Update applies only the fields present in patch. An empty description
// clears it.
func (s *TodoService) Update(ctx context.Context, ownerID string, id int64, patch model.TodoPatch) (model.Todo, error) {
	current, err := s.todos.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return model.Todo{}, err
	}

	fields := apierror.FieldErrors{}
	if patch.Title != nil {
		current.Title = normalizeTitle(fields, *patch.Title)
	}
	if patch.Description != nil {
		current.Description = normalizeDescription(fields, patch.Description)
	}
	if patch.Completed != nil {
		current.Completed = *patch.Completed
	}
	if err := fields.Err(); err != nil {
		return model.Todo{}, err
	}

	current.UpdatedAt = s.now().UTC()
	return s.todos.Update(ctx, current)
}

func (s *TodoService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.todos.Delete(ctx, id, ownerID)
}

func normalizeTitle(fields apierror.FieldErrors, raw string) string {
	title := util.SanitizeText(raw, false)
	switch {
	case title == "":
		fields.Add("title", "This field may not be blank.")
	case utf8.RuneCountInString(title) > model.TodoTitleMaxLength:
		fields.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", model.TodoTitleMaxLength))
	}
	return title
}

func normalizeDescription(fields apierror.FieldErrors, raw *string) *string {
	if raw == nil {
		return nil
	}
	description := util.SanitizeText(*raw, true)
	if description == "" {
		return nil
	}
	if utf8.RuneCountInString(description) > model.TodoDescriptionMaxLength {
		fields.Add("description", fmt.Sprintf("Ensure this field has no more than %d characters.", model.TodoDescriptionMaxLength))
	}
	return &description
}
