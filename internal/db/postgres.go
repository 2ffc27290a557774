package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spacesedan/nluflow/internal/models"
)

const CREATE_HISTORY_TABLE = `CREATE TABLE IF NOT EXISTS analysis_history (
	job_id      TEXT PRIMARY KEY,
	features    TEXT[] NOT NULL,
	source      TEXT NOT NULL,
	cached      BOOLEAN NOT NULL DEFAULT FALSE,
	error       TEXT,
	results     JSONB,
	analyzed_at TIMESTAMPTZ NOT NULL
)`

// PgxQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type HistoryStore struct {
	db PgxQuerier
}

func NewHistoryStore(db PgxQuerier) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, CREATE_HISTORY_TABLE); err != nil {
		return fmt.Errorf("[DB] Failed to create analysis_history: %w", err)
	}
	return nil
}

// InsertHistory writes records in one statement. Jobs already recorded are
// left untouched, so redelivered messages are harmless.
func (s *HistoryStore) InsertHistory(ctx context.Context, records []models.AnalyzedRecord) error {
	if len(records) == 0 {
		return nil
	}

	query, args, err := BuildInsertHistory(records)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("[DB] Failed to insert analysis history: %w", err)
	}

	slog.Info("[DB] Stored analysis history",
		slog.Int("records", len(records)),
		slog.Int64("inserted", tag.RowsAffected()))
	return nil
}

func BuildInsertHistory(records []models.AnalyzedRecord) (string, []any, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO analysis_history (job_id, features, source, cached, error, results, analyzed_at) VALUES ")

	args := make([]any, 0, len(records)*7)
	for i, r := range records {
		results, err := json.Marshal(r.Results)
		if err != nil {
			return "", nil, fmt.Errorf("[DB] Failed to marshal results for %s: %w", r.JobID, err)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 7
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)

		features := r.Features
		if features == nil {
			features = []string{}
		}
		var failure *string
		if r.Error != "" {
			failure = &r.Error
		}
		args = append(args, r.JobID, features, r.Source, r.Cached, failure, results, r.AnalyzedAt)
	}
	b.WriteString(" ON CONFLICT (job_id) DO NOTHING")
	return b.String(), args, nil
}

// RecentHistory lists records analyzed at or after since, newest first.
func (s *HistoryStore) RecentHistory(ctx context.Context, since time.Time) ([]models.AnalyzedRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT job_id, features, source, cached, COALESCE(error, ''), results, analyzed_at
		 FROM analysis_history WHERE analyzed_at >= $1 ORDER BY analyzed_at DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("[DB] Failed to query analysis history: %w", err)
	}
	defer rows.Close()

	var records []models.AnalyzedRecord
	for rows.Next() {
		var (
			r       models.AnalyzedRecord
			results []byte
		)
		if err := rows.Scan(&r.JobID, &r.Features, &r.Source, &r.Cached, &r.Error, &results, &r.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("[DB] Failed to scan analysis history: %w", err)
		}
		if len(results) > 0 && string(results) != "null" {
			r.Results = &models.AnalysisResults{}
			if err := json.Unmarshal(results, r.Results); err != nil {
				return nil, fmt.Errorf("[DB] Failed to decode results for %s: %w", r.JobID, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
