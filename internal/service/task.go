package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
)

// MaxPageLimit caps how many tasks a single list call returns.
const MaxPageLimit = 100

type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description *string           `json:"description" validate:"omitnil,max=1000"`
	Status      *model.TaskStatus `json:"status" validate:"omitnil,oneof=pending completed"`
}

type patchRules struct {
	Title       *string           `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string           `json:"description" validate:"omitnil,max=1000"`
	Status      *model.TaskStatus `json:"status" validate:"omitnil,oneof=pending completed"`
}

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// Create stores a task for ownerID. A non-empty idempKey makes retries return
// the task first created under that key by the same owner.
func (s *TaskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput, idempKey string) (model.Task, error) {
	if err := validateStruct(in); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}

	if idempKey != "" {
		existingID, err := s.repo.GetIdempotencyKey(ctx, ownerID, idempKey)
		switch {
		case err == nil:
			return s.repo.Get(ctx, ownerID, existingID)
		case !errors.Is(err, repo.ErrorNotFound):
			return model.Task{}, errors.Wrap(err, "lookup idempotency key")
		}
	}

	t := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusPending,
		UserID:      ownerID,
	}
	if in.Status != nil {
		t.Status = *in.Status
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return model.Task{}, errors.Wrap(err, "create task")
	}

	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, ownerID, idempKey, created.ID); err != nil {
			// The task exists; a lost key only costs a duplicate on retry.
			s.logger.Warn("failed to save idempotency key", zap.Int64("task_id", created.ID), zap.Error(err))
		}
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List validates the filter at the boundary and returns one page of the owner's tasks.
func (s *TaskService) List(ctx context.Context, ownerID int64, filter model.TaskFilter) ([]model.Task, error) {
	if err := checkFilter(&filter); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ownerID, filter)
}

// Update changes only the fields present in patch. An empty patch is a read.
func (s *TaskService) Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (model.Task, error) {
	rules := patchRules{Title: patch.Title, Status: patch.Status}
	if patch.Description.Set {
		rules.Description = patch.Description.Value
	}
	if err := validateStruct(rules); err != nil {
		return model.Task{}, err
	}

	if patch.Empty() {
		return s.repo.Get(ctx, ownerID, id)
	}
	return s.repo.Update(ctx, ownerID, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *TaskService) GetStats(ctx context.Context, ownerID int64) (model.TaskStats, error) {
	return s.repo.GetStats(ctx, ownerID)
}

func checkFilter(f *model.TaskFilter) error {
	if f.Page < 1 {
		return validationf("page must be >= 1")
	}
	if f.Limit < 1 {
		return validationf("limit must be >= 1")
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if !f.SortBy.Valid() {
		return validationf("sort_by must be one of [created_at updated_at title status]")
	}
	if !f.SortOrder.Valid() {
		return validationf("sort_order must be one of [asc desc]")
	}
	if f.Status != nil && !f.Status.Valid() {
		return validationf("status must be one of [pending completed]")
	}
	if f.Search != nil && *f.Search == "" {
		f.Search = nil
	}
	return nil
}
