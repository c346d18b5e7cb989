package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go-todo-api/internal/model"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_username, actor_ip, status, resource, error_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Action, formatTime(entry.OccurredAt),
		entry.Actor.UserID, entry.Actor.Username, entry.Actor.IP,
		entry.Status, entry.Resource, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	where := []string{"actor_user_id = ?"}
	args := []any{query.ActorID}

	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, "lower(action) = lower(?)")
		args = append(args, action)
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, occurred_at, actor_user_id, actor_username, actor_ip, status, resource, error_text
		 FROM audit_entries `+whereClause+`
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ? OFFSET ?`, append(args, query.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var (
			e          model.AuditEntry
			occurredAt string
		)
		if err := rows.Scan(
			&e.ID, &e.Action, &occurredAt,
			&e.Actor.UserID, &e.Actor.Username, &e.Actor.IP,
			&e.Status, &e.Resource, &e.Error,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}
