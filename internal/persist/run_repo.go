package persist

import (
	"context"
	"fmt"
	"time"
)

// Run is one finished course.
type Run struct {
	ID          int64
	BlocksCount int
	BlocksSeed  int64
	Duration    time.Duration
	FinishedAt  time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// InsertBatch writes runs in a single transaction.
func (r *RunRepo) InsertBatch(ctx context.Context, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("runs begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, run := range runs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO runs (blocks_count, blocks_seed, duration_ms, finished_at)
			 VALUES ($1, $2, $3, $4)`,
			run.BlocksCount, run.BlocksSeed, run.Duration.Milliseconds(), run.FinishedAt,
		); err != nil {
			return fmt.Errorf("runs insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Best returns the fastest runs for a course length, fastest first.
func (r *RunRepo) Best(ctx context.Context, blocksCount, limit int) ([]Run, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, blocks_count, blocks_seed, duration_ms, finished_at
		 FROM runs WHERE blocks_count = $1
		 ORDER BY duration_ms, finished_at LIMIT $2`,
		blocksCount, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query best runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var ms int64
		if err := rows.Scan(&run.ID, &run.BlocksCount, &run.BlocksSeed, &ms, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, run)
	}
	return out, rows.Err()
}
