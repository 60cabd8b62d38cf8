package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID int64, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, ownerID, id, patch)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, ownerID int64, key string, taskID int64) error {
	args := m.Called(ctx, ownerID, key, taskID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, ownerID int64, key string) (int64, error) {
	args := m.Called(ctx, ownerID, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetStats(ctx context.Context, ownerID int64) (model.TaskStats, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.TaskStats), args.Error(1)
}

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}
