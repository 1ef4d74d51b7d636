package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
)

// BeginSession opens a session that subsequent cycles are attributed to.
// An already open session is ended first.
func (s *Store) BeginSession(ctx context.Context, mode string) (int64, error) {
	if err := s.EndSession(ctx); err != nil {
		return 0, err
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (mode, started_at_ms) VALUES (?, ?)`,
		mode, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session ID: %w", err)
	}

	s.mu.Lock()
	s.session = id
	s.mu.Unlock()
	return id, nil
}

// EndSession closes the open session, if any.
func (s *Store) EndSession(ctx context.Context) error {
	s.mu.Lock()
	id := s.session
	s.session = 0
	s.mu.Unlock()

	if id == 0 {
		return nil
	}
	_, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET ended_at_ms = ? WHERE id = ?`,
		s.now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to end session %d: %w", id, err)
	}
	return nil
}

// SaveCycle stores one cycle report under the open session.
func (s *Store) SaveCycle(ctx context.Context, r jiggle.CycleReport) error {
	s.mu.Lock()
	id := s.session
	s.mu.Unlock()

	var session sql.NullInt64
	if id != 0 {
		session = sql.NullInt64{Int64: id, Valid: true}
	}
	var errMsg sql.NullString
	if r.Err != nil {
		errMsg = sql.NullString{String: r.Err.Error(), Valid: true}
	}
	x, y := r.End.Round()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO cycles (
			session_id, started_at_ms, duration_ms, end_x, end_y,
			keystroke, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session, r.Started.UnixMilli(), r.Duration.Milliseconds(), x, y,
		r.Keystroke, r.Err == nil, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to save cycle: %w", err)
	}
	return nil
}

// RecordCycle implements jiggle.Recorder. Storage errors are logged.
func (s *Store) RecordCycle(r jiggle.CycleReport) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.SaveCycle(ctx, r); err != nil {
		log.Printf("history: %v", err)
	}
}
