// Package pgtest starts a throwaway Postgres for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/db"
)

// SetupTestDB создает тестовую БД с помощью testcontainers и накатывает миграции.
// Без Docker тест пропускается.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := db.Migrate(connStr, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	pool, err := db.Connect(ctx, connStr, db.PoolOptions{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE idempotency_keys, tasks, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedUser inserts a user with a placeholder hash and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (name, email, hashed_password)
		VALUES ($1, $2, 'x')
		RETURNING id
	`, "User "+email, email).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedTasks создает тестовые задачи "Task 1".."Task N"; later tasks are newer.
func SeedTasks(t *testing.T, pool *pgxpool.Pool, ownerID int64, count int) []int64 {
	t.Helper()

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := pool.QueryRow(context.Background(), `
			INSERT INTO tasks (title, status, user_id, created_at)
			VALUES ($1, 'pending', $2, now() + $3::int * interval '1 second')
			RETURNING id
		`, fmt.Sprintf("Task %d", i+1), ownerID, i).Scan(&id)
		if err != nil {
			t.Fatalf("Failed to seed task: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}
