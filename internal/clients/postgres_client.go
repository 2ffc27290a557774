package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	postgresInstance *Postgres
	postgresOnce     sync.Once
	postgresErr      error
)

type Postgres struct {
	DB *pgxpool.Pool
}

// GetPostgresClient opens the shared pool once and pings it.
func GetPostgresClient(ctx context.Context, dsn string) (*Postgres, error) {
	postgresOnce.Do(func() {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			postgresErr = fmt.Errorf("[PostgresClient] failed to create pool: %w", err)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			postgresErr = fmt.Errorf("[PostgresClient] failed to ping PostgreSQL: %w", err)
			return
		}

		slog.Info("[PostgresClient] Connected to PostgreSQL successfully")
		postgresInstance = &Postgres{DB: pool}
	})

	return postgresInstance, postgresErr
}

func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		p.DB.Close()
	}
}
