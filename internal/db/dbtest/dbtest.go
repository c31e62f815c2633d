// Package dbtest starts a throwaway PostgreSQL with pgvector for integration
// tests and applies the schema migrations to it.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/tagexplorer/backend/internal/db"
)

const image = "pgvector/pgvector:pg16"

// Pool returns a migrated connection pool backed by a fresh container. The
// test is skipped under -short or when no container runtime is reachable.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := startContainer(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	if err := db.Migrate(url, ""); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func startContainer(ctx context.Context) (ctr *postgres.PostgresContainer, err error) {
	// testcontainers panics when no docker host can be found
	defer func() {
		if r := recover(); r != nil {
			ctr = nil
			err = panicError{r}
		}
	}()
	return postgres.Run(ctx, image,
		postgres.WithDatabase("tagexplorer"),
		postgres.WithUsername("tagexplorer"),
		postgres.WithPassword("tagexplorer"),
		postgres.BasicWaitStrategies(),
	)
}

type panicError struct{ v any }

func (p panicError) Error() string {
	return "container start panicked"
}
