package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/model"
)

func TestAuditService_Log(t *testing.T) {
	t.Parallel()

	t.Run("stamps and stores the entry", func(t *testing.T) {
		store := new(mockAuditStore)
		svc := NewAuditService(store)
		fixed := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		store.On("Log", mock.Anything, model.AuditEntry{
			Action:     model.AuditActionTodoCreate,
			OccurredAt: fixed,
			Actor:      model.AuditActor{UserID: "user-1", Username: "alice"},
			Status:     model.AuditStatusSuccess,
			Resource:   "todo:1",
		}).Return(nil)

		svc.Log(context.Background(), model.AuditActionTodoCreate, model.AuditActor{UserID: "user-1", Username: "alice"}, model.AuditStatusSuccess, "todo:1", "")
		store.AssertExpectations(t)
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		store := new(mockAuditStore)
		store.On("Log", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		assert.NotPanics(t, func() {
			NewAuditService(store).Log(context.Background(), model.AuditActionLogin, model.AuditActor{}, model.AuditStatusFailure, "", "bad credentials")
		})
	})

	t.Run("nil service is a no-op", func(t *testing.T) {
		var svc *AuditService
		assert.NotPanics(t, func() {
			svc.Log(context.Background(), model.AuditActionLogout, model.AuditActor{}, model.AuditStatusSuccess, "", "")
		})
	})
}

func TestAuditService_Query(t *testing.T) {
	t.Parallel()

	t.Run("normalizes paging and builds meta", func(t *testing.T) {
		store := new(mockAuditStore)
		svc := NewAuditService(store)

		store.On("Query", mock.Anything, model.AuditQuery{ActorID: "user-1", Action: "todo.create", Page: 1, Limit: 200}).
			Return([]model.AuditEntry{{ID: 1}}, 401, nil)

		items, meta, err := svc.Query(context.Background(), model.AuditQuery{ActorID: "user-1", Action: " TODO.Create ", Page: -3, Limit: 5000})
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, model.Meta{Page: 1, Limit: 200, Total: 401, TotalPages: 3}, meta)
	})

	t.Run("defaults limit", func(t *testing.T) {
		store := new(mockAuditStore)
		store.On("Query", mock.Anything, model.AuditQuery{ActorID: "user-1", Page: 2, Limit: 50}).
			Return([]model.AuditEntry{}, 0, nil)

		_, meta, err := NewAuditService(store).Query(context.Background(), model.AuditQuery{ActorID: "user-1", Page: 2})
		require.NoError(t, err)
		assert.Equal(t, 0, meta.TotalPages)
	})

	t.Run("clamps page so the offset cannot overflow", func(t *testing.T) {
		store := new(mockAuditStore)
		store.On("Query", mock.Anything, mock.MatchedBy(func(q model.AuditQuery) bool {
			offset := (q.Page - 1) * q.Limit
			return q.Limit == 200 && q.Page == math.MaxInt/200 && offset > 0
		})).Return([]model.AuditEntry{}, 3, nil)

		items, meta, err := NewAuditService(store).Query(context.Background(), model.AuditQuery{ActorID: "user-1", Page: math.MaxInt, Limit: 200})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, math.MaxInt/200, meta.Page)
		assert.Equal(t, 1, meta.TotalPages)
		store.AssertExpectations(t)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := new(mockAuditStore)
		store.On("Query", mock.Anything, mock.Anything).Return(nil, 0, errors.New("boom"))

		_, _, err := NewAuditService(store).Query(context.Background(), model.AuditQuery{ActorID: "user-1"})
		require.Error(t, err)
	})
}
