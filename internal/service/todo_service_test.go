package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/model"
	"go-todo-api/pkg/apierror"
)

func newTestTodoService() (*TodoService, *mockTodoStore) {
	store := new(mockTodoStore)
	svc := NewTodoService(store)
	fixed := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, store
}

func ptr[T any](v T) *T { return &v }

func TestTodoService_Create(t *testing.T) {
	t.Parallel()

	t.Run("owner always comes from the caller", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("Create", mock.Anything, mock.MatchedBy(func(todo model.Todo) bool {
			return todo.OwnerID == "user-1" &&
				todo.Title == "Buy milk" &&
				todo.Description == nil &&
				!todo.Completed
		})).Return(model.Todo{ID: 7, OwnerID: "user-1", Title: "Buy milk"}, nil)

		created, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: "  Buy milk\u200B "})
		require.NoError(t, err)
		assert.Equal(t, int64(7), created.ID)
		store.AssertExpectations(t)
	})

	t.Run("keeps description and completed", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("Create", mock.Anything, mock.MatchedBy(func(todo model.Todo) bool {
			return todo.Description != nil && *todo.Description == "two\nlines" && todo.Completed
		})).Return(model.Todo{ID: 1}, nil)

		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title:       "Walk dog",
			Description: ptr("two\nlines"),
			Completed:   ptr(true),
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("validates title and description", func(t *testing.T) {
		svc, store := newTestTodoService()

		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title:       "\u200B  ",
			Description: ptr(strings.Repeat("d", model.TodoDescriptionMaxLength+1)),
		})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "description")

		_, err = svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title: strings.Repeat("é", model.TodoTitleMaxLength+1),
		})
		fields = fieldErrors(t, err)
		assert.Contains(t, fields, "title")

		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("title at the limit counts runes", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("Create", mock.Anything, mock.Anything).Return(model.Todo{ID: 2}, nil)

		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title: strings.Repeat("é", model.TodoTitleMaxLength),
		})
		require.NoError(t, err)
	})
}

func TestTodoService_Update(t *testing.T) {
	t.Parallel()

	existing := model.Todo{
		ID:          3,
		OwnerID:     "user-1",
		Title:       "Buy milk",
		Description: ptr("semi-skimmed"),
		CreatedAt:   time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}

	t.Run("applies only present fields", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("GetByIDAndOwner", mock.Anything, int64(3), "user-1").Return(existing, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(todo model.Todo) bool {
			return todo.Title == "Buy milk" &&
				*todo.Description == "semi-skimmed" &&
				todo.Completed &&
				todo.UpdatedAt.Equal(svc.now())
		})).Return(model.Todo{ID: 3, Completed: true}, nil)

		updated, err := svc.Update(context.Background(), "user-1", 3, model.TodoPatch{Completed: ptr(true)})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		store.AssertExpectations(t)
	})

	t.Run("empty description clears it", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("GetByIDAndOwner", mock.Anything, int64(3), "user-1").Return(existing, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(todo model.Todo) bool {
			return todo.Description == nil
		})).Return(model.Todo{ID: 3}, nil)

		_, err := svc.Update(context.Background(), "user-1", 3, model.TodoPatch{Description: ptr("   ")})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("GetByIDAndOwner", mock.Anything, int64(3), "user-1").Return(existing, nil)

		_, err := svc.Update(context.Background(), "user-1", 3, model.TodoPatch{Title: ptr("")})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "title")
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("another owner's todo is not found", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("GetByIDAndOwner", mock.Anything, int64(3), "user-2").Return(model.Todo{}, model.ErrTodoNotFound)

		_, err := svc.Update(context.Background(), "user-2", 3, model.TodoPatch{Completed: ptr(true)})
		assert.ErrorIs(t, err, model.ErrTodoNotFound)
	})
}

func TestTodoService_Search(t *testing.T) {
	t.Parallel()

	t.Run("blank title is a bad request", func(t *testing.T) {
		svc, store := newTestTodoService()

		_, err := svc.Search(context.Background(), "user-1", "  ")
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "No search parameter provided", apiErr.Message)
		assert.Equal(t, 400, apiErr.HTTPStatus)
		store.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("filters within the owner", func(t *testing.T) {
		svc, store := newTestTodoService()
		store.On("ListByOwner", mock.Anything, "user-1", "milk").Return([]model.Todo{{ID: 1, Title: "Buy milk"}}, nil)

		todos, err := svc.Search(context.Background(), "user-1", " milk ")
		require.NoError(t, err)
		assert.Len(t, todos, 1)
	})
}

func TestTodoService_ListGetDelete(t *testing.T) {
	t.Parallel()

	svc, store := newTestTodoService()
	store.On("ListByOwner", mock.Anything, "user-1", "").Return([]model.Todo{}, nil)
	store.On("GetByIDAndOwner", mock.Anything, int64(9), "user-1").Return(model.Todo{}, model.ErrTodoNotFound)
	store.On("Delete", mock.Anything, int64(4), "user-1").Return(nil)

	todos, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, todos)

	_, err = svc.Get(context.Background(), "user-1", 9)
	assert.ErrorIs(t, err, model.ErrTodoNotFound)

	require.NoError(t, svc.Delete(context.Background(), "user-1", 4))
	store.AssertExpectations(t)
}
