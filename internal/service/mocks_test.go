package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-todo-api/internal/model"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type mockTodoStore struct {
	mock.Mock
}

func (m *mockTodoStore) ListByOwner(ctx context.Context, ownerID string, titleFilter string) ([]model.Todo, error) {
	args := m.Called(ctx, ownerID, titleFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Todo), args.Error(1)
}

func (m *mockTodoStore) GetByIDAndOwner(ctx context.Context, id int64, ownerID string) (model.Todo, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *mockTodoStore) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *mockTodoStore) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *mockTodoStore) Delete(ctx context.Context, id int64, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type mockAuditStore struct {
	mock.Mock
}

func (m *mockAuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditStore) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.AuditEntry), args.Int(1), args.Error(2)
}
