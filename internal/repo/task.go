package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

// sortColumns maps the closed set of sort fields onto SQL columns.
var sortColumns = map[model.SortField]string{
	model.SortCreatedAt: "created_at",
	model.SortUpdatedAt: "updated_at",
	model.SortTitle:     "title",
	model.SortStatus:    "status",
}

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), t.UserID,
	)
	created, err := scanTask(row)
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, ownerID, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, ownerID int64, filter model.TaskFilter) ([]model.Task, error) {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		return nil, errors.Errorf("unsupported sort field %q", filter.SortBy)
	}
	direction := "DESC"
	if filter.SortOrder == model.SortAsc {
		direction = "ASC"
	}

	var status, pattern *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	if filter.Search != nil {
		p := "%" + escapeLike(*filter.Search) + "%"
		pattern = &p
	}

	// id breaks ties so that pages do not overlap.
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE user_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR title ILIKE $3 OR description ILIKE $3)
		ORDER BY %s %s, id %s
		LIMIT $4 OFFSET $5
	`, taskColumns, column, direction, direction)

	rows, err := r.pool.Query(ctx, query, ownerID, status, pattern, filter.Limit, filter.Offset())
	if err != nil {
		return nil, errors.Wrap(err, "query tasks")
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, filter.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies only the fields present in patch, in a single statement
// whose predicate includes the owner.
func (r *TaskRepo) Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (model.Task, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = CASE WHEN $4::boolean THEN $5 ELSE description END,
		    status = COALESCE($6, status),
		    updated_at = GREATEST(now(), updated_at)
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		id, ownerID, patch.Title, patch.Description.Set, patch.Description.Value, status,
	)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return errors.Wrap(err, "delete task")
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, ownerID int64, key string, taskID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, task_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO NOTHING
	`, ownerID, key, taskID)
	return errors.Wrap(err, "save idempotency key")
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, ownerID int64, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT task_id FROM idempotency_keys WHERE user_id = $1 AND key = $2
	`, ownerID, key).Scan(&id)
	return id, mapError(err)
}

func (r *TaskRepo) GetStats(ctx context.Context, ownerID int64) (model.TaskStats, error) {
	var s model.TaskStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'completed')
		FROM tasks
		WHERE user_id = $1
	`, ownerID).Scan(&s.Total, &s.Pending, &s.Completed)
	return s, errors.Wrap(err, "task stats")
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	t.Status = model.TaskStatus(status)
	return t, err
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrorConflict
	}
	return errors.WithStack(err)
}
