package sqlite

import (
	"time"

	"github.com/pixway/pixway/internal/storage/models"
)

// LogGeneration stores a generation log entry
func (s *Storage) LogGeneration(log *models.GenerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if log.ID == "" {
		log.ID = generateID("log")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO generation_logs (id, request_id, provider, model, mode,
			prompt_tokens, status_code, failure_kind, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.RequestID, log.Provider, log.Model, log.Mode,
		log.PromptTokens, log.StatusCode, log.FailureKind, log.ErrorMessage, log.DurationMs, log.CreatedAt)

	return err
}

// GetGenerationLogs retrieves generation logs with filtering
func (s *Storage) GetGenerationLogs(filter models.LogFilter) ([]*models.GenerationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	query := `SELECT id, request_id, provider, model, mode,
		prompt_tokens, status_code, COALESCE(failure_kind, ''), COALESCE(error_message, ''),
		duration_ms, created_at
		FROM generation_logs WHERE 1=1`

	var args []interface{}

	if filter.Provider != "" {
		query += " AND provider = ?"
		args = append(args, filter.Provider)
	}
	if filter.Model != "" {
		query += " AND model = ?"
		args = append(args, filter.Model)
	}
	if filter.FailureKind != "" {
		query += " AND failure_kind = ?"
		args = append(args, filter.FailureKind)
	}
	if filter.StartDate != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND created_at <= ?"
		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.GenerationLog
	for rows.Next() {
		var log models.GenerationLog
		if err := rows.Scan(&log.ID, &log.RequestID, &log.Provider, &log.Model, &log.Mode,
			&log.PromptTokens, &log.StatusCode, &log.FailureKind, &log.ErrorMessage,
			&log.DurationMs, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
