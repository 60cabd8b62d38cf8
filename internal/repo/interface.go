package repo

import (
	"context"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Every method is scoped to an owner: a task that belongs to someone else
// behaves exactly like a task that does not exist.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, ownerID, id int64) (model.Task, error)
	List(ctx context.Context, ownerID int64, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	SaveIdempotencyKey(ctx context.Context, ownerID int64, key string, taskID int64) error
	GetIdempotencyKey(ctx context.Context, ownerID int64, key string) (int64, error)
	GetStats(ctx context.Context, ownerID int64) (model.TaskStats, error)
}

// UserRepository provides account persistence.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}
