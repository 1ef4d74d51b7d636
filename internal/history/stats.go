package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Stats summarizes activity since a point in time.
type Stats struct {
	Sessions     int
	Cycles       int
	Failures     int
	Keystrokes   int
	AvgCycle     time.Duration
	LastCycleAt  time.Time
	LastFailedAt time.Time
}

// Stats returns activity recorded at or after since.
func (s *Store) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var st Stats
	sinceMs := since.UnixMilli()

	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE started_at_ms >= ?`, sinceMs,
	).Scan(&st.Sessions)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count sessions: %w", err)
	}

	var avg sql.NullFloat64
	var lastOK, lastFailed sql.NullInt64
	err = s.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN keystroke = 1 THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN success = 1 THEN duration_ms END),
			MAX(CASE WHEN success = 1 THEN started_at_ms END),
			MAX(CASE WHEN success = 0 THEN started_at_ms END)
		FROM cycles
		WHERE started_at_ms >= ?`, sinceMs,
	).Scan(&st.Cycles, &st.Failures, &st.Keystrokes, &avg, &lastOK, &lastFailed)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query cycle stats: %w", err)
	}

	if avg.Valid {
		st.AvgCycle = time.Duration(avg.Float64 * float64(time.Millisecond))
	}
	if lastOK.Valid {
		st.LastCycleAt = time.UnixMilli(lastOK.Int64)
	}
	if lastFailed.Valid {
		st.LastFailedAt = time.UnixMilli(lastFailed.Int64)
	}
	return st, nil
}

// Prune deletes cycles and finished sessions that started before cutoff and
// returns the number of cycles removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ms := cutoff.UnixMilli()
	res, err := s.conn.ExecContext(ctx, `DELETE FROM cycles WHERE started_at_ms < ?`, ms)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cycles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned cycles: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE started_at_ms < ? AND ended_at_ms IS NOT NULL`, ms,
	); err != nil {
		return n, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return n, nil
}
